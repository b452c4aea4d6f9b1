//go:build !gles

package config

// Native backends multisample the surface at 4x.
const (
	defaultSampleCount = 4
	constrainedBuild   = false
)
