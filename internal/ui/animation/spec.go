package animation

import (
	"time"

	"zenbreath/internal/core/model"
)

// Motion describes one bubble movement.
type Motion struct {
	Direction model.Direction
	Duration  time.Duration
}

// Target returns the scale the bubble reaches at the end of the motion.
func (motion Motion) Target(config Config) float64 {
	if motion.Direction == model.Inhale {
		return config.MaxScale
	}
	return config.MinScale
}

// Ease maps linear progress in [0,1] onto a smooth in-out curve.
func Ease(progress float64) float64 {
	if progress <= 0 {
		return 0
	}
	if progress >= 1 {
		return 1
	}
	return progress * progress * (3 - 2*progress)
}
