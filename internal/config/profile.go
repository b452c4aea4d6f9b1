package config

import (
	"realtime/internal/gpu"
)

// ConstrainedTextureDimension caps 2D textures on downlevel backends.
const ConstrainedTextureDimension = 4096

// Profile is the platform configuration resolved once at startup and consumed
// uniformly by the rest of the core.
type Profile struct {
	SampleCount           uint32
	MaxTextureDimension2D uint32
	Constrained           bool
	PresentMode           gpu.PresentMode
}

// Multisampled reports whether passes render into a resolved MSAA target.
func (p Profile) Multisampled() bool {
	return p.SampleCount > 1
}

// ResolveProfile combines the compile-time defaults, the adapter probe and the
// rendering config. It never raises the sample count above the build default.
func ResolveProfile(r Rendering, caps gpu.Capabilities) Profile {
	p := Profile{
		SampleCount:           defaultSampleCount,
		MaxTextureDimension2D: caps.MaxTextureDimension2D,
		Constrained:           constrainedBuild || caps.Constrained,
	}

	if p.Constrained {
		p.SampleCount = 1
		if p.MaxTextureDimension2D == 0 || p.MaxTextureDimension2D > ConstrainedTextureDimension {
			p.MaxTextureDimension2D = ConstrainedTextureDimension
		}
	}
	if r.SampleCount == 1 {
		p.SampleCount = 1
	}

	// Load validates the name; anything else falls back to fifo.
	p.PresentMode, _ = gpu.ParsePresentMode(r.PresentMode)
	return p
}
