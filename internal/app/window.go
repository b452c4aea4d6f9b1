package app

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"realtime/internal/config"
	"realtime/internal/engine"
	"realtime/internal/input"
)

// Window adapts a glfw window to the event loop. Callbacks run inside
// WaitEvents on the main thread and are forwarded to the handler as
// input events.
type Window struct {
	win     *glfw.Window
	handler func(input.Event)

	redraw  bool
	visible bool
	grabbed bool

	// Last cursor position, used to derive raw motion while disabled.
	lastX, lastY float64
	haveLast     bool
}

var _ engine.Window = (*Window)(nil)

// NewWindow creates a resizable window without a client API.
func NewWindow(cfg config.Window) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "window creation")
	}

	w := &Window{win: win, visible: true}
	w.setupCallbacks()
	return w, nil
}

// SetHandler sets the receiver of translated events.
func (w *Window) SetHandler(h func(input.Event)) { w.handler = h }

func (w *Window) emit(ev input.Event) {
	if w.handler != nil {
		w.handler(ev)
	}
}

func (w *Window) setupCallbacks() {
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.emit(input.Resize(uint32(width), uint32(height)))
	})

	w.win.SetContentScaleCallback(func(_ *glfw.Window, x, _ float32) {
		width, height := w.FramebufferSize()
		w.emit(input.ScaleFactorChanged(x, width, height))
	})

	w.win.SetCloseCallback(func(_ *glfw.Window) {
		w.emit(input.Event{Kind: input.KindCloseRequested})
	})

	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if ev, ok := translateKey(key, action); ok {
			w.emit(ev)
		}
	})

	w.win.SetCharCallback(func(_ *glfw.Window, char rune) {
		w.emit(input.Event{Kind: input.KindChar, Char: char})
	})

	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if ev, ok := translateButton(button, action); ok {
			w.emit(ev)
		}
	})

	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.disabled() {
			if w.haveLast {
				w.emit(input.PointerMotion(x-w.lastX, y-w.lastY))
			}
			w.lastX, w.lastY, w.haveLast = x, y, true
			return
		}
		w.haveLast = false
		px, py := w.toPoints(x, y)
		w.emit(input.Event{Kind: input.KindCursorMoved, X: px, Y: py})
	})

	w.win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.emit(input.Event{Kind: input.KindScroll, X: xoff, Y: yoff})
	})
}

// toPoints converts glfw screen coordinates to UI points.
func (w *Window) toPoints(x, y float64) (float64, float64) {
	ww, _ := w.win.GetSize()
	fw, _ := w.win.GetFramebufferSize()
	if ww <= 0 || fw <= 0 {
		return x, y
	}
	pixels := float64(fw) / float64(ww)
	scale := float64(w.ScaleFactor())
	return x * pixels / scale, y * pixels / scale
}

func (w *Window) disabled() bool {
	return cursorMode(w.visible, w.grabbed) == glfw.CursorDisabled
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (width, height uint32) {
	fw, fh := w.win.GetFramebufferSize()
	if fw < 0 || fh < 0 {
		return 0, 0
	}
	return uint32(fw), uint32(fh)
}

// ScaleFactor returns the pixels-per-point of the window's monitor.
func (w *Window) ScaleFactor() float32 {
	x, _ := w.win.GetContentScale()
	if x <= 0 {
		return 1
	}
	return x
}

func (w *Window) SetCursorVisible(visible bool) {
	w.visible = visible
	w.applyCursor()
}

func (w *Window) SetCursorGrab(grab bool) {
	w.grabbed = grab
	w.applyCursor()
}

func (w *Window) applyCursor() {
	mode := cursorMode(w.visible, w.grabbed)
	w.win.SetInputMode(glfw.CursorMode, mode)
	if glfw.RawMouseMotionSupported() {
		raw := glfw.False
		if mode == glfw.CursorDisabled {
			raw = glfw.True
		}
		w.win.SetInputMode(glfw.RawMouseMotion, raw)
	}
	w.haveLast = false
}

// SetTitle replaces the window title.
func (w *Window) SetTitle(title string) { w.win.SetTitle(title) }

// RequestRedraw makes the next WaitEvents deliver a redraw event.
func (w *Window) RequestRedraw() { w.redraw = true }

// WaitEvents processes glfw events, blocking up to timeout for one, then
// delivers a pending redraw. A zero timeout polls.
func (w *Window) WaitEvents(timeout time.Duration) {
	if timeout > 0 && !w.redraw {
		glfw.WaitEventsTimeout(timeout.Seconds())
	} else {
		glfw.PollEvents()
	}
	if w.redraw {
		w.redraw = false
		w.emit(input.Event{Kind: input.KindRedrawRequested})
	}
}

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// Destroy closes the window and terminates glfw.
func (w *Window) Destroy() {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	glfw.Terminate()
}
