package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCursor struct {
	visible bool
	grabbed bool
	calls   int
}

func (c *fakeCursor) SetCursorVisible(v bool) { c.visible = v; c.calls++ }
func (c *fakeCursor) SetCursorGrab(g bool)    { c.grabbed = g; c.calls++ }

func TestPrimaryPressCaptures(t *testing.T) {
	cur := &fakeCursor{visible: true}
	var c Capture

	assert.True(t, c.Handle(MouseButtonEvent(MouseButtonPrimary, true), cur))
	assert.True(t, c.Captured())
	assert.False(t, cur.visible)
	assert.True(t, cur.grabbed)
}

func TestOtherEventsNotConsumed(t *testing.T) {
	tests := []Event{
		MouseButtonEvent(MouseButtonPrimary, false),
		MouseButtonEvent(MouseButtonSecondary, true),
		KeyEvent(KeySpace, true),
		PointerMotion(3, 4),
		Resize(10, 10),
	}
	for _, ev := range tests {
		t.Run(ev.Kind.String(), func(t *testing.T) {
			cur := &fakeCursor{visible: true}
			var c Capture
			assert.False(t, c.Handle(ev, cur))
			assert.False(t, c.Captured())
			assert.Zero(t, cur.calls)
		})
	}
}

func TestEscapeReleasesCapture(t *testing.T) {
	cur := &fakeCursor{visible: true}
	var c Capture
	c.Handle(MouseButtonEvent(MouseButtonPrimary, true), cur)

	assert.False(t, c.Escape(cur))
	assert.False(t, c.Captured())
	assert.True(t, cur.visible)
	assert.False(t, cur.grabbed)
}

func TestEscapeWithoutCaptureExits(t *testing.T) {
	cur := &fakeCursor{visible: true}
	var c Capture

	assert.True(t, c.Escape(cur))
	assert.False(t, c.Captured())
	assert.Zero(t, cur.calls)
}

func TestCaptureCycle(t *testing.T) {
	cur := &fakeCursor{visible: true}
	var c Capture
	for i := 0; i < 3; i++ {
		c.Handle(MouseButtonEvent(MouseButtonPrimary, true), cur)
		assert.True(t, c.Captured())
		assert.False(t, c.Escape(cur))
		assert.False(t, c.Captured())
	}
	assert.True(t, c.Escape(cur))
}
