package webgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"realtime/internal/gpu"
)

var formatsToWGPU = map[gputypes.TextureFormat]wgpu.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm:          wgpu.TextureFormat_RGBA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb:      wgpu.TextureFormat_RGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8Unorm:          wgpu.TextureFormat_BGRA8Unorm,
	gputypes.TextureFormatBGRA8UnormSrgb:      wgpu.TextureFormat_BGRA8UnormSrgb,
	gputypes.TextureFormatDepth32Float:        wgpu.TextureFormat_Depth32Float,
	gputypes.TextureFormatDepth24PlusStencil8: wgpu.TextureFormat_Depth24PlusStencil8,
}

// textureFormat converts a backend-neutral format. Unknown formats map to
// Undefined, which wgpu rejects with a validation error.
func textureFormat(f gputypes.TextureFormat) wgpu.TextureFormat {
	if v, ok := formatsToWGPU[f]; ok {
		return v
	}
	return wgpu.TextureFormat_Undefined
}

// neutralFormat is the inverse of textureFormat.
func neutralFormat(f wgpu.TextureFormat) gputypes.TextureFormat {
	for k, v := range formatsToWGPU {
		if v == f {
			return k
		}
	}
	return gputypes.TextureFormatUndefined
}

// isSrgb reports whether writes to f are gamma encoded by the hardware.
func isSrgb(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatRGBA8UnormSrgb || f == gputypes.TextureFormatBGRA8UnormSrgb
}

func presentMode(m gpu.PresentMode) wgpu.PresentMode {
	switch m {
	case gpu.PresentModeMailbox:
		return wgpu.PresentMode_Mailbox
	case gpu.PresentModeImmediate:
		return wgpu.PresentMode_Immediate
	default:
		return wgpu.PresentMode_Fifo
	}
}

func clearColor(c gputypes.Color) wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}
