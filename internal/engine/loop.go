// Package engine drives the single-threaded event loop: it dispatches
// platform events, paces redraws and owns the exit flag.
package engine

import (
	"context"
	"time"

	"realtime/internal/camera"
	"realtime/internal/gpu"
	"realtime/internal/input"
	"realtime/internal/logging"
	"realtime/internal/scheduler"
	"realtime/internal/ui"
)

// Window is the platform window as the loop sees it.
type Window interface {
	input.Cursor
	ui.Window

	// RequestRedraw schedules a KindRedrawRequested event for the next
	// WaitEvents call.
	RequestRedraw()

	// WaitEvents dispatches pending events, blocking up to timeout for
	// the first one. A zero timeout polls.
	WaitEvents(timeout time.Duration)

	ShouldClose() bool
}

// Renderer is the render orchestrator.
type Renderer interface {
	Resize(width, height uint32) error
	Redraw(win ui.Window, dt time.Duration) error
}

// EventSink receives the events the loop does not consume itself.
type EventSink interface {
	HandleEvent(ev input.Event)

	// WantsPointer reports whether the UI is under the pointer. Button
	// presses then go to the UI instead of capturing the pointer.
	WantsPointer() bool
}

// Loop owns the pointer capture state, the pacing scheduler and the exit flag.
type Loop struct {
	win      Window
	renderer Renderer
	ui       EventSink
	camera   *camera.Camera

	capture input.Capture
	sched   *scheduler.Scheduler
	timer   *scheduler.Timer

	exit bool
	err  error
}

// New creates a loop. camera may be nil. A nil clock uses the default clock.
func New(win Window, renderer Renderer, sink EventSink, cam *camera.Camera, clock scheduler.Clock) *Loop {
	return &Loop{
		win:      win,
		renderer: renderer,
		ui:       sink,
		camera:   cam,
		sched:    scheduler.New(clock),
		timer:    scheduler.NewTimer(clock),
	}
}

// Captured reports whether the pointer is captured.
func (l *Loop) Captured() bool { return l.capture.Captured() }

// Exiting reports whether the exit flag is set.
func (l *Loop) Exiting() bool { return l.exit }

// Exit sets the exit flag. The loop stops before its next tick.
func (l *Loop) Exit() { l.exit = true }

// HandleEvent dispatches one platform event. The capture controller sees
// every event first and consumes primary presses, unless the UI owns the
// pointer.
func (l *Loop) HandleEvent(ev input.Event) {
	if !l.uiOwnsPointer(ev) && l.capture.Handle(ev, l.win) {
		return
	}

	switch ev.Kind {
	case input.KindCloseRequested:
		l.exit = true

	case input.KindKey:
		if ev.Key == input.KeyEscape && ev.Pressed {
			if l.capture.Escape(l.win) {
				l.exit = true
			}
			return
		}
		l.ui.HandleEvent(ev)

	case input.KindResize, input.KindScaleFactorChanged:
		if err := l.renderer.Resize(ev.Width, ev.Height); err != nil {
			l.fail(err)
			return
		}
		if l.camera != nil && ev.Width > 0 && ev.Height > 0 {
			l.camera.SetViewport(int(ev.Width), int(ev.Height))
		}

	case input.KindRedrawRequested:
		dt := l.timer.Update()
		if err := l.renderer.Redraw(l.win, dt); err != nil {
			l.fail(err)
		}

	case input.KindPointerMotion:
		if l.capture.Captured() && l.camera != nil {
			l.camera.ProcessPointer(ev.X, ev.Y)
		}

	default:
		l.ui.HandleEvent(ev)
	}
}

func (l *Loop) uiOwnsPointer(ev input.Event) bool {
	return ev.Kind == input.KindMouseButton && !l.capture.Captured() && l.ui.WantsPointer()
}

// fail records a fatal error and stops the loop, or logs an aborted frame.
func (l *Loop) fail(err error) {
	if gpu.IsFatal(err) {
		logging.Logger().Error("fatal render error", "error", err)
		l.err = err
		l.exit = true
		return
	}
	logging.Logger().Error("frame aborted", "error", err)
}

// Run drives the loop until the exit flag is set, the window closes or ctx
// is done. It returns the fatal error that stopped it, if any.
func (l *Loop) Run(ctx context.Context) error {
	for !l.exit {
		select {
		case <-ctx.Done():
			logging.Logger().Info("loop cancelled", "reason", ctx.Err())
			return l.err
		default:
		}
		if l.win.ShouldClose() {
			break
		}

		redraw, wait := l.sched.Tick()
		if redraw {
			l.win.RequestRedraw()
		}
		l.win.WaitEvents(wait)
	}
	return l.err
}
