package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"realtime/internal/gpu"
)

const (
	DefaultPath = "config.json"

	DefaultWidth  = 1280
	DefaultHeight = 720

	// MinUIScale and MaxUIScale bound the console "Scale" slider.
	MinUIScale = 1
	MaxUIScale = 20
)

// Config holds application configuration
type Config struct {
	Window    Window    `json:"window"`
	Rendering Rendering `json:"rendering"`
	UI        UI        `json:"ui"`
	Logging   Logging   `json:"logging"`
}

// Window contains the initial window parameters
type Window struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Rendering contains rendering parameters
type Rendering struct {
	// PresentMode is one of "fifo", "mailbox" or "immediate".
	PresentMode string `json:"present_mode"`

	// SampleCount forces the MSAA sample count. 0 keeps the platform
	// default; only 1 is honored as an override (disables multisampling).
	SampleCount uint32 `json:"sample_count"`
}

// UI contains the initial retained state of the overlay console
type UI struct {
	// ShowConsole opens the console window at startup
	ShowConsole bool `json:"show_console"`

	// Scale is the initial console slider value (1-20)
	Scale int `json:"scale"`
}

// Logging selects the log level ("debug", "info", "warn", "error")
type Logging struct {
	Level string `json:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: Window{
			Title:  "realtime",
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Rendering: Rendering{
			PresentMode: gpu.PresentModeFifo.String(),
		},
		UI: UI{
			ShowConsole: false,
			Scale:       10,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads configuration from path on top of the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if _, err := gpu.ParsePresentMode(cfg.Rendering.PresentMode); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	cfg.Normalize()
	return cfg, nil
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize clamps every value into its valid range
func (c *Config) Normalize() {
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Window.Title == "" {
		c.Window.Title = "realtime"
	}

	c.UI.Scale = ClampScale(c.UI.Scale)

	if c.Rendering.SampleCount > 1 {
		c.Rendering.SampleCount = 0
	}
}

// ClampScale clamps a console scale value to [MinUIScale, MaxUIScale]
func ClampScale(v int) int {
	if v < MinUIScale {
		return MinUIScale
	}
	if v > MaxUIScale {
		return MaxUIScale
	}
	return v
}
