package input

// Cursor is the part of the window the capture policy drives.
type Cursor interface {
	SetCursorVisible(visible bool)
	SetCursorGrab(grab bool)
}

// Capture tracks whether the pointer is captured by the application.
type Capture struct {
	captured bool
}

// Captured reports the current state.
func (c *Capture) Captured() bool { return c.captured }

// Handle applies the primary-button half of the policy. It returns true
// when the event was consumed: a primary press captures the pointer,
// hides it and grabs it.
func (c *Capture) Handle(ev Event, cur Cursor) bool {
	if ev.Kind != KindMouseButton || ev.Button != MouseButtonPrimary || !ev.Pressed {
		return false
	}
	c.captured = true
	cur.SetCursorGrab(true)
	cur.SetCursorVisible(false)
	return true
}

// Escape applies the escape-key half of the policy: a captured pointer is
// released and shown again; otherwise the application should exit.
func (c *Capture) Escape(cur Cursor) (exit bool) {
	if !c.captured {
		return true
	}
	cur.SetCursorGrab(false)
	cur.SetCursorVisible(true)
	c.captured = false
	return false
}
