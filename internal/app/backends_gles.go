//go:build gles

package app

import "github.com/rajveermalviya/go-webgpu/wgpu"

// Constrained builds run on the GL backend.
const instanceBackends = wgpu.InstanceBackend_GL
