// Package input models the platform events the core consumes and the
// pointer-capture policy applied to them.
package input

// Kind identifies an Event.
type Kind uint8

const (
	KindResize Kind = iota + 1
	KindScaleFactorChanged
	KindCloseRequested
	KindKey
	KindMouseButton
	KindCursorMoved
	KindScroll
	KindChar
	KindPointerMotion
	KindRedrawRequested
)

func (k Kind) String() string {
	switch k {
	case KindResize:
		return "resize"
	case KindScaleFactorChanged:
		return "scale-factor-changed"
	case KindCloseRequested:
		return "close-requested"
	case KindKey:
		return "key"
	case KindMouseButton:
		return "mouse-button"
	case KindCursorMoved:
		return "cursor-moved"
	case KindScroll:
		return "scroll"
	case KindChar:
		return "char"
	case KindPointerMotion:
		return "pointer-motion"
	case KindRedrawRequested:
		return "redraw-requested"
	}
	return "unknown"
}

// Key is a platform-independent key code. Only keys the core or the UI
// reacts to are named.
type Key uint16

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeySpace
	KeyLeftShift
	KeyRightShift
	KeyLeftControl
	KeyRightControl
	KeyLeftAlt
	KeyRightAlt
	KeyA
	KeyC
	KeyV
	KeyX
	KeyY
	KeyZ
)

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	MouseButtonPrimary MouseButton = iota
	MouseButtonSecondary
	MouseButtonMiddle
)

// Event is one platform event. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind

	// Resize and ScaleFactorChanged: new framebuffer size in pixels.
	Width, Height uint32

	// ScaleFactorChanged: new pixels-per-point.
	ScaleFactor float32

	// Key and MouseButton.
	Key     Key
	Button  MouseButton
	Pressed bool

	// CursorMoved: position in points. PointerMotion: raw delta.
	// Scroll: wheel offsets.
	X, Y float64

	// Char: the typed character.
	Char rune
}

// Resize builds a framebuffer resize event.
func Resize(width, height uint32) Event {
	return Event{Kind: KindResize, Width: width, Height: height}
}

// ScaleFactorChanged builds a scale-factor event carrying the new size.
func ScaleFactorChanged(scale float32, width, height uint32) Event {
	return Event{Kind: KindScaleFactorChanged, ScaleFactor: scale, Width: width, Height: height}
}

// KeyEvent builds a keyboard event.
func KeyEvent(key Key, pressed bool) Event {
	return Event{Kind: KindKey, Key: key, Pressed: pressed}
}

// MouseButtonEvent builds a mouse button event.
func MouseButtonEvent(button MouseButton, pressed bool) Event {
	return Event{Kind: KindMouseButton, Button: button, Pressed: pressed}
}

// PointerMotion builds a raw pointer motion event.
func PointerMotion(dx, dy float64) Event {
	return Event{Kind: KindPointerMotion, X: dx, Y: dy}
}
