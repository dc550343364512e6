//go:build windows

package overlay

import (
	"fyne.io/fyne/v2/driver"
	"golang.org/x/sys/windows"
)

const (
	exStyleLayered = 0x00080000
	layeredAlpha   = 0x2
)

var exStyleIndex int32 = -20

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	getWindowLongPtr   = user32.NewProc("GetWindowLongPtrW")
	setWindowLongPtr   = user32.NewProc("SetWindowLongPtrW")
	setLayeredAlpha    = user32.NewProc("SetLayeredWindowAttributes")
	exStyleIndexOffset = uintptr(uint32(exStyleIndex))
)

// applyNativeOpacity makes the whole fullscreen session window translucent.
// Windowed sessions and full opacity drop the layered style again.
func (overlay *Window) applyNativeOpacity(alpha uint8) {
	nativeWindow, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		return
	}
	layered := overlay.config.Fullscreen && alpha < 255

	nativeWindow.RunNative(func(context any) {
		hwnd := windowHandle(context)
		if hwnd == 0 {
			return
		}

		style, _, _ := getWindowLongPtr.Call(hwnd, exStyleIndexOffset)
		if !layered {
			if style&exStyleLayered != 0 {
				setWindowLongPtr.Call(hwnd, exStyleIndexOffset, style&^exStyleLayered)
			}
			return
		}
		if style&exStyleLayered == 0 {
			setWindowLongPtr.Call(hwnd, exStyleIndexOffset, style|exStyleLayered)
		}
		setLayeredAlpha.Call(hwnd, 0, uintptr(alpha), layeredAlpha)
	})
}

func windowHandle(context any) uintptr {
	switch value := context.(type) {
	case driver.WindowsWindowContext:
		return value.HWND
	case *driver.WindowsWindowContext:
		if value != nil {
			return value.HWND
		}
	}
	return 0
}
