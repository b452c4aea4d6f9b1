package engine

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime/internal/camera"
	"realtime/internal/gpu"
	"realtime/internal/input"
	"realtime/internal/scheduler"
	"realtime/internal/ui"
)

type fakeWindow struct {
	now     time.Duration
	loop    *Loop
	visible bool
	grabbed bool

	pending []input.Event
	redraw  bool
	waits   []time.Duration
	close   bool

	// onWait runs after every WaitEvents, before pending events are dispatched.
	onWait func(w *fakeWindow)
}

func newFakeWindow() *fakeWindow { return &fakeWindow{visible: true} }

func (w *fakeWindow) clock() time.Duration              { return w.now }
func (w *fakeWindow) SetCursorVisible(v bool)           { w.visible = v }
func (w *fakeWindow) SetCursorGrab(g bool)              { w.grabbed = g }
func (w *fakeWindow) FramebufferSize() (uint32, uint32) { return 800, 600 }
func (w *fakeWindow) ScaleFactor() float32              { return 1 }
func (w *fakeWindow) RequestRedraw()                    { w.redraw = true }
func (w *fakeWindow) ShouldClose() bool                 { return w.close }

func (w *fakeWindow) WaitEvents(timeout time.Duration) {
	w.waits = append(w.waits, timeout)
	w.now += timeout
	if w.onWait != nil {
		w.onWait(w)
	}
	events := w.pending
	w.pending = nil
	for _, ev := range events {
		w.loop.HandleEvent(ev)
	}
	if w.redraw {
		w.redraw = false
		w.loop.HandleEvent(input.Event{Kind: input.KindRedrawRequested})
	}
}

type fakeRenderer struct {
	resizes   [][2]uint32
	redraws   []time.Duration
	redrawErr error
	resizeErr error
}

func (r *fakeRenderer) Resize(w, h uint32) error {
	r.resizes = append(r.resizes, [2]uint32{w, h})
	return r.resizeErr
}

func (r *fakeRenderer) Redraw(_ ui.Window, dt time.Duration) error {
	r.redraws = append(r.redraws, dt)
	return r.redrawErr
}

type sink struct {
	events  []input.Event
	hovered bool
}

func (s *sink) HandleEvent(ev input.Event) { s.events = append(s.events, ev) }
func (s *sink) WantsPointer() bool         { return s.hovered }

type fixture struct {
	win      *fakeWindow
	renderer *fakeRenderer
	ui       *sink
	cam      *camera.Camera
	loop     *Loop
}

func newFixture() *fixture {
	f := &fixture{
		win:      newFakeWindow(),
		renderer: &fakeRenderer{},
		ui:       &sink{},
		cam:      camera.NewCamera(mgl32.Vec3{}, 800, 600),
	}
	f.loop = New(f.win, f.renderer, f.ui, f.cam, f.win.clock)
	f.win.loop = f.loop
	return f
}

func TestPrimaryPressCapturesAndIsConsumed(t *testing.T) {
	f := newFixture()

	f.loop.HandleEvent(input.MouseButtonEvent(input.MouseButtonPrimary, true))

	assert.True(t, f.loop.Captured())
	assert.True(t, f.win.grabbed)
	assert.False(t, f.win.visible)
	assert.Empty(t, f.ui.events, "the press does not reach the UI")

	f.loop.HandleEvent(input.MouseButtonEvent(input.MouseButtonPrimary, false))
	f.loop.HandleEvent(input.MouseButtonEvent(input.MouseButtonSecondary, true))
	assert.Len(t, f.ui.events, 2)
}

func TestPrimaryPressOverUIGoesToUI(t *testing.T) {
	f := newFixture()
	f.ui.hovered = true

	press := input.MouseButtonEvent(input.MouseButtonPrimary, true)
	f.loop.HandleEvent(press)

	assert.False(t, f.loop.Captured())
	assert.False(t, f.win.grabbed)
	assert.True(t, f.win.visible)
	assert.Equal(t, []input.Event{press}, f.ui.events)

	f.ui.hovered = false
	f.loop.HandleEvent(press)
	assert.True(t, f.loop.Captured())
	assert.Len(t, f.ui.events, 1)
}

func TestEscapeReleasesThenExits(t *testing.T) {
	f := newFixture()
	f.loop.HandleEvent(input.MouseButtonEvent(input.MouseButtonPrimary, true))

	f.loop.HandleEvent(input.KeyEvent(input.KeyEscape, true))
	assert.False(t, f.loop.Captured())
	assert.False(t, f.win.grabbed)
	assert.True(t, f.win.visible)
	assert.False(t, f.loop.Exiting())

	f.loop.HandleEvent(input.KeyEvent(input.KeyEscape, false))
	assert.False(t, f.loop.Exiting(), "release does not count")

	f.loop.HandleEvent(input.KeyEvent(input.KeyEscape, true))
	assert.True(t, f.loop.Exiting())
}

func TestCloseRequestedExits(t *testing.T) {
	f := newFixture()
	f.loop.HandleEvent(input.Event{Kind: input.KindCloseRequested})
	assert.True(t, f.loop.Exiting())
}

func TestResizeForwardsAndUpdatesViewport(t *testing.T) {
	f := newFixture()

	f.loop.HandleEvent(input.Resize(1024, 768))
	f.loop.HandleEvent(input.ScaleFactorChanged(2, 2048, 1536))
	f.loop.HandleEvent(input.Resize(0, 0))

	assert.Equal(t, [][2]uint32{{1024, 768}, {2048, 1536}, {0, 0}}, f.renderer.resizes)
	assert.Equal(t, 2048, f.cam.ViewportWidth, "zero-area resize leaves the viewport")
	assert.Equal(t, 1536, f.cam.ViewportHeight)
}

func TestPointerMotionOnlyWhileCaptured(t *testing.T) {
	f := newFixture()
	yaw := f.cam.Yaw

	f.loop.HandleEvent(input.PointerMotion(50, 0))
	assert.Equal(t, yaw, f.cam.Yaw)

	f.loop.HandleEvent(input.MouseButtonEvent(input.MouseButtonPrimary, true))
	f.loop.HandleEvent(input.PointerMotion(50, 0))
	assert.NotEqual(t, yaw, f.cam.Yaw)
	assert.Empty(t, f.ui.events)
}

func TestOtherEventsReachUI(t *testing.T) {
	f := newFixture()
	events := []input.Event{
		input.KeyEvent(input.KeyTab, true),
		{Kind: input.KindCursorMoved, X: 1, Y: 2},
		{Kind: input.KindScroll, Y: 1},
		{Kind: input.KindChar, Char: 'x'},
	}
	for _, ev := range events {
		f.loop.HandleEvent(ev)
	}
	assert.Equal(t, events, f.ui.events)
}

func TestRunPacesRedraws(t *testing.T) {
	f := newFixture()
	f.win.onWait = func(w *fakeWindow) {
		if w.now >= 10*scheduler.TargetInterval {
			w.close = true
		}
	}

	require.NoError(t, f.loop.Run(context.Background()))

	require.NotEmpty(t, f.renderer.redraws)
	for _, dt := range f.renderer.redraws {
		assert.GreaterOrEqual(t, dt, scheduler.TargetInterval)
	}
	for _, wait := range f.win.waits {
		assert.LessOrEqual(t, wait, scheduler.TargetInterval)
	}
	assert.Len(t, f.renderer.redraws, 9, "one redraw per interval until close")
}

func TestRunStopsOnFatalError(t *testing.T) {
	f := newFixture()
	f.renderer.redrawErr = errors.Wrap(gpu.ErrOutOfMemory, "acquire")

	err := f.loop.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)
	assert.Len(t, f.renderer.redraws, 1)
	assert.True(t, f.loop.Exiting())
}

func TestRunContinuesAfterAbortedFrame(t *testing.T) {
	f := newFixture()
	f.renderer.redrawErr = errors.New("ui texture upload")
	f.win.onWait = func(w *fakeWindow) {
		if len(f.renderer.redraws) >= 3 {
			w.pending = append(w.pending, input.Event{Kind: input.KindCloseRequested})
		}
	}

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Len(t, f.renderer.redraws, 3)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.win.onWait = func(*fakeWindow) { cancel() }

	require.NoError(t, f.loop.Run(ctx))
	assert.Len(t, f.win.waits, 1)
}

func TestRunExitsImmediatelyWhenFlagSet(t *testing.T) {
	f := newFixture()
	f.loop.Exit()
	require.NoError(t, f.loop.Run(context.Background()))
	assert.Empty(t, f.win.waits)
}
