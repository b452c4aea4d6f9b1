package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"realtime/internal/input"
)

var keys = map[glfw.Key]input.Key{
	glfw.KeyEscape:       input.KeyEscape,
	glfw.KeyEnter:        input.KeyEnter,
	glfw.KeyKPEnter:      input.KeyEnter,
	glfw.KeyTab:          input.KeyTab,
	glfw.KeyBackspace:    input.KeyBackspace,
	glfw.KeyDelete:       input.KeyDelete,
	glfw.KeyLeft:         input.KeyLeft,
	glfw.KeyRight:        input.KeyRight,
	glfw.KeyUp:           input.KeyUp,
	glfw.KeyDown:         input.KeyDown,
	glfw.KeyHome:         input.KeyHome,
	glfw.KeyEnd:          input.KeyEnd,
	glfw.KeyPageUp:       input.KeyPageUp,
	glfw.KeyPageDown:     input.KeyPageDown,
	glfw.KeySpace:        input.KeySpace,
	glfw.KeyLeftShift:    input.KeyLeftShift,
	glfw.KeyRightShift:   input.KeyRightShift,
	glfw.KeyLeftControl:  input.KeyLeftControl,
	glfw.KeyRightControl: input.KeyRightControl,
	glfw.KeyLeftAlt:      input.KeyLeftAlt,
	glfw.KeyRightAlt:     input.KeyRightAlt,
	glfw.KeyA:            input.KeyA,
	glfw.KeyC:            input.KeyC,
	glfw.KeyV:            input.KeyV,
	glfw.KeyX:            input.KeyX,
	glfw.KeyY:            input.KeyY,
	glfw.KeyZ:            input.KeyZ,
}

// translateKey maps a glfw key action to an input event. Repeats are
// reported as presses except for escape, which must toggle once per press.
func translateKey(key glfw.Key, action glfw.Action) (input.Event, bool) {
	k, ok := keys[key]
	if !ok {
		return input.Event{}, false
	}
	switch action {
	case glfw.Press:
		return input.KeyEvent(k, true), true
	case glfw.Release:
		return input.KeyEvent(k, false), true
	case glfw.Repeat:
		if k == input.KeyEscape {
			return input.Event{}, false
		}
		return input.KeyEvent(k, true), true
	}
	return input.Event{}, false
}

func translateButton(button glfw.MouseButton, action glfw.Action) (input.Event, bool) {
	var b input.MouseButton
	switch button {
	case glfw.MouseButtonLeft:
		b = input.MouseButtonPrimary
	case glfw.MouseButtonRight:
		b = input.MouseButtonSecondary
	case glfw.MouseButtonMiddle:
		b = input.MouseButtonMiddle
	default:
		return input.Event{}, false
	}
	return input.MouseButtonEvent(b, action == glfw.Press), true
}

// cursorMode is the glfw cursor mode for the requested visibility and grab.
func cursorMode(visible, grabbed bool) int {
	switch {
	case grabbed && !visible:
		return glfw.CursorDisabled
	case !visible:
		return glfw.CursorHidden
	default:
		return glfw.CursorNormal
	}
}
