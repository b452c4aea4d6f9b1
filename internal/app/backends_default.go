//go:build !gles

package app

import "github.com/rajveermalviya/go-webgpu/wgpu"

const instanceBackends = wgpu.InstanceBackend_Primary
