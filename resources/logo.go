// Package resources provides the application icons as Fyne resources.
package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"fyne.io/fyne/v2"
)

// LogoVariant selects the icon tint.
type LogoVariant string

const (
	// LogoActive is shown while the app is idle or a session runs.
	LogoActive LogoVariant = "active"
	// LogoPaused is shown while a session is paused.
	LogoPaused LogoVariant = "paused"
)

const logoSize = 64

var logoCache sync.Map

var logoColors = map[LogoVariant][2]color.NRGBA{
	LogoActive: {{R: 56, G: 189, B: 248, A: 255}, {R: 14, G: 116, B: 144, A: 255}},
	LogoPaused: {{R: 148, G: 163, B: 184, A: 255}, {R: 71, G: 85, B: 105, A: 255}},
}

// Logo returns a PNG icon for the given variant.
func Logo(variant LogoVariant) (fyne.Resource, error) {
	if cached, ok := logoCache.Load(variant); ok {
		return cached.(fyne.Resource), nil
	}

	colors, ok := logoColors[variant]
	if !ok {
		return nil, fmt.Errorf("load logo %q: unknown variant", variant)
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, renderLogo(colors[0], colors[1])); err != nil {
		return nil, fmt.Errorf("encode logo %q: %w", variant, err)
	}

	resource := fyne.NewStaticResource(fmt.Sprintf("zenbreath-%s.png", variant), encoded.Bytes())
	actual, _ := logoCache.LoadOrStore(variant, resource)
	return actual.(fyne.Resource), nil
}

// MustLogo returns a Fyne resource or panics on error.
func MustLogo(variant LogoVariant) fyne.Resource {
	resource, err := Logo(variant)
	if err != nil {
		panic(err)
	}
	return resource
}

// renderLogo draws a bubble with a lighter core fading into the rim.
func renderLogo(core, rim color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, logoSize, logoSize))
	center := float64(logoSize-1) / 2
	radius := float64(logoSize) / 2

	for y := 0; y < logoSize; y++ {
		for x := 0; x < logoSize; x++ {
			distance := math.Hypot(float64(x)-center, float64(y)-center) / radius
			if distance > 1 {
				continue
			}
			// Antialias the outer pixel ring.
			alpha := math.Min(1, (1-distance)*radius)
			img.SetNRGBA(x, y, color.NRGBA{
				R: mix(core.R, rim.R, distance),
				G: mix(core.G, rim.G, distance),
				B: mix(core.B, rim.B, distance),
				A: uint8(alpha * 255),
			})
		}
	}
	return img
}

func mix(from, to uint8, amount float64) uint8 {
	return uint8(float64(from) + (float64(to)-float64(from))*amount)
}
