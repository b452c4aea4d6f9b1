// Package scheduler paces the render loop and measures its throughput.
package scheduler

import (
	"time"

	"github.com/loov/hrtime"
)

const (
	// TargetFrameRate is the fixed redraw rate. Displays above 60Hz are
	// not detected.
	TargetFrameRate = 60

	// ReportInterval is the number of frames between FPS reports.
	ReportInterval = 100
)

// TargetInterval is the minimum time between two frame requests.
const TargetInterval = time.Second / TargetFrameRate

// Clock returns a monotonic timestamp.
type Clock func() time.Duration

// DefaultClock is the high-resolution process clock.
var DefaultClock Clock = hrtime.Now

// Scheduler decides when the next frame is requested. It bounds the redraw
// rate even when the present mode would accept frames faster.
type Scheduler struct {
	now         Clock
	interval    time.Duration
	lastRequest time.Duration
}

// New creates a scheduler at TargetInterval. A nil clock uses DefaultClock.
// The first frame is due one interval after construction.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = DefaultClock
	}
	return &Scheduler{
		now:         clock,
		interval:    TargetInterval,
		lastRequest: clock(),
	}
}

// Interval returns the target frame interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Tick reports whether a frame should be requested now. When it should not,
// wait is the remaining time until the next one is due.
func (s *Scheduler) Tick() (redraw bool, wait time.Duration) {
	now := s.now()
	elapsed := now - s.lastRequest
	if elapsed >= s.interval {
		s.lastRequest = now
		return true, 0
	}
	return false, s.interval - elapsed
}
