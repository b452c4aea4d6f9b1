package scheduler

import "time"

// Stats accumulates frame time and reports the average FPS every
// ReportInterval frames.
type Stats struct {
	now       Clock
	interval  int
	lastFrame time.Duration
	accum     time.Duration
	frames    int
}

// NewStats creates frame statistics. A nil clock uses DefaultClock.
func NewStats(clock Clock) *Stats {
	if clock == nil {
		clock = DefaultClock
	}
	return &Stats{
		now:       clock,
		interval:  ReportInterval,
		lastFrame: clock(),
	}
}

// Frame records one rendered frame. Every ReportInterval frames it returns
// frames/accumulated-seconds and resets the counter and accumulator.
func (s *Stats) Frame() (fps float64, reported bool) {
	now := s.now()
	s.accum += now - s.lastFrame
	s.lastFrame = now
	s.frames++

	if s.frames < s.interval {
		return 0, false
	}
	if secs := s.accum.Seconds(); secs > 0 {
		fps = float64(s.frames) / secs
	}
	s.frames = 0
	s.accum = 0
	return fps, true
}

// Frames returns the frames counted since the last report.
func (s *Stats) Frames() int { return s.frames }

// Accumulated returns the frame time accumulated since the last report.
func (s *Stats) Accumulated() time.Duration { return s.accum }

// Timer measures the delta between two updates.
type Timer struct {
	now        Clock
	lastUpdate time.Duration
}

// NewTimer creates an update timer. A nil clock uses DefaultClock.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = DefaultClock
	}
	return &Timer{now: clock, lastUpdate: clock()}
}

// Update returns the time since the previous Update (or construction).
func (t *Timer) Update() time.Duration {
	now := t.now()
	dt := now - t.lastUpdate
	t.lastUpdate = now
	return dt
}
