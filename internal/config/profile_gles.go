//go:build gles

package config

// GLES/WebGL class backends cannot multisample the surface format.
const (
	defaultSampleCount = 1
	constrainedBuild   = true
)
