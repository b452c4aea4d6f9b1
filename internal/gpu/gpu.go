// Package gpu defines the backend-neutral contracts the frame core renders
// through. The go-webgpu implementation lives in internal/backend/webgpu;
// tests use in-memory fakes.
package gpu

import (
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// DepthFormat is the format of every depth attachment the core creates.
const DepthFormat = gputypes.TextureFormatDepth32Float

// PresentMode selects how the surface hands frames to the display.
type PresentMode uint8

const (
	// PresentModeFifo waits for vertical blank. Always supported.
	PresentModeFifo PresentMode = iota
	// PresentModeMailbox replaces the queued frame, discarding surplus frames.
	PresentModeMailbox
	// PresentModeImmediate presents without waiting and may tear.
	PresentModeImmediate
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeImmediate:
		return "immediate"
	default:
		return "fifo"
	}
}

// ParsePresentMode maps a config name to a PresentMode. The empty string is fifo.
func ParsePresentMode(s string) (PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo", "vsync":
		return PresentModeFifo, nil
	case "mailbox":
		return PresentModeMailbox, nil
	case "immediate":
		return PresentModeImmediate, nil
	}
	return PresentModeFifo, errors.Errorf("unknown present mode %q", s)
}

// SurfaceConfig is the current configuration of the presentation surface.
type SurfaceConfig struct {
	Format      gputypes.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}

// Valid reports whether the configuration has a non-zero area.
func (c SurfaceConfig) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// WithSize returns a copy of c resized to width x height.
func (c SurfaceConfig) WithSize(width, height uint32) SurfaceConfig {
	c.Width = width
	c.Height = height
	return c
}

// Capabilities is what the adapter probe reports before a device exists.
type Capabilities struct {
	// Backend names the native API behind the adapter (e.g. "vulkan", "metal").
	Backend string

	// MaxTextureDimension2D is the adapter's supported 2D texture limit.
	MaxTextureDimension2D uint32

	// Constrained is set for downlevel backends (GLES/WebGL class) that
	// cannot multisample the surface format.
	Constrained bool
}

// View is a texture view usable as a render pass attachment.
type View interface {
	Release()
}

// AttachmentDescriptor describes a render attachment texture.
type AttachmentDescriptor struct {
	Label       string
	Width       uint32
	Height      uint32
	SampleCount uint32
	Format      gputypes.TextureFormat
}

// Device creates GPU resources. Components borrow it for the duration of one
// call and never retain it.
type Device interface {
	CreateAttachment(desc AttachmentDescriptor) (View, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
}

// Queue submits recorded command buffers.
type Queue interface {
	Submit(cmd CommandBuffer)
}

// CommandEncoder opens one command recording scope.
type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass
	Finish() (CommandBuffer, error)
	Release()
}

// CommandBuffer is a finished recording ready for submission.
type CommandBuffer interface {
	Release()
}

// RenderPass is an open render pass. Draw recording is backend specific:
// renderers type-assert to the backend's pass.
type RenderPass interface {
	End()
}

// ColorAttachment is the single color target of a pass. ResolveTarget is nil
// unless View is multisampled.
type ColorAttachment struct {
	View          View
	ResolveTarget View
	ClearValue    gputypes.Color
}

// DepthAttachment is cleared to DepthClearValue. Stencil is never touched.
type DepthAttachment struct {
	View            View
	DepthClearValue float32
}

// RenderPassDescriptor describes one render pass.
type RenderPassDescriptor struct {
	Label string
	Color ColorAttachment
	Depth *DepthAttachment
}

// SurfaceTexture is an acquired presentable image. Exactly one of Present or
// Discard must be called.
type SurfaceTexture interface {
	View() View
	Present()
	Discard()
}

// Surface is the presentation side of the GPU context.
type Surface interface {
	// Configure applies cfg. A zero-area cfg is a no-op.
	Configure(cfg SurfaceConfig) error

	// Acquire returns the next presentable image or one of ErrSurfaceLost,
	// ErrSurfaceOutdated, ErrSurfaceTimeout or ErrOutOfMemory.
	Acquire() (SurfaceTexture, error)
}
