package ui

import (
	"fmt"

	"realtime/internal/config"
)

// State is the retained widget state. It is mutated only inside Declare.
type State struct {
	Scale      int32
	WindowOpen bool

	// FPS is the last reported frame rate, shown read-only.
	FPS float64
}

// NewState creates the retained state from the UI config.
func NewState(cfg config.UI) *State {
	return &State{
		Scale:      int32(config.ClampScale(cfg.Scale)),
		WindowOpen: cfg.ShowConsole,
	}
}

// Declare builds the console window. The scale stays within
// [config.MinUIScale, config.MaxUIScale] whatever the engine writes.
func (s *State) Declare(ctx Context) {
	ctx.Window("console", &s.WindowOpen, func() {
		ctx.SliderInt("Scale", &s.Scale, config.MinUIScale, config.MaxUIScale)
		if s.FPS > 0 {
			ctx.Label(fmt.Sprintf("FPS: %.0f", s.FPS))
		}
	})
	s.Scale = int32(config.ClampScale(int(s.Scale)))
}
