package webgpu

import (
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"realtime/internal/gpu"
)

// Device adapts a wgpu device to gpu.Device.
type Device struct {
	raw *wgpu.Device
}

var _ gpu.Device = (*Device)(nil)

// CreateAttachment creates a render-attachment texture and its view.
func (d *Device) CreateAttachment(desc gpu.AttachmentDescriptor) (gpu.View, error) {
	sampleCount := desc.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}
	format := textureFormat(desc.Format)

	texture, err := d.raw.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        format,
		Usage:         wgpu.TextureUsage_RenderAttachment,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s texture", desc.Label)
	}

	view, err := texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          format,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		texture.Release()
		return nil, errors.Wrapf(err, "create %s view", desc.Label)
	}
	return &attachment{texture: texture, view: view}, nil
}

// CreateCommandEncoder opens a command recording scope.
func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	enc, err := d.raw.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, errors.Wrap(err, "create command encoder")
	}
	return &encoder{raw: enc}, nil
}

// Queue adapts a wgpu queue to gpu.Queue.
type Queue struct {
	raw *wgpu.Queue
}

var _ gpu.Queue = (*Queue)(nil)

func (q *Queue) Submit(cmd gpu.CommandBuffer) {
	if cb, ok := cmd.(*commandBuffer); ok {
		q.raw.Submit(cb.raw)
	}
}

// attachment owns a texture and its single view.
type attachment struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (a *attachment) Release() {
	if a.view != nil {
		a.view.Release()
		a.view = nil
	}
	if a.texture != nil {
		a.texture.Release()
		a.texture = nil
	}
}

// textureView is a view owned by someone else, typically the swap chain.
type textureView struct {
	raw *wgpu.TextureView
}

func (v *textureView) Release() {
	if v.raw != nil {
		v.raw.Release()
		v.raw = nil
	}
}

// rawView unwraps views created by this package. Foreign views are nil.
func rawView(v gpu.View) *wgpu.TextureView {
	switch v := v.(type) {
	case *attachment:
		return v.view
	case *textureView:
		return v.raw
	}
	return nil
}

type encoder struct {
	raw *wgpu.CommandEncoder
}

func (e *encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	color := wgpu.RenderPassColorAttachment{
		View:       rawView(desc.Color.View),
		LoadOp:     wgpu.LoadOp_Clear,
		StoreOp:    wgpu.StoreOp_Store,
		ClearValue: clearColor(desc.Color.ClearValue),
	}
	if desc.Color.ResolveTarget != nil {
		color.ResolveTarget = rawView(desc.Color.ResolveTarget)
	}

	rpd := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
	}
	if desc.Depth != nil {
		rpd.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            rawView(desc.Depth.View),
			DepthLoadOp:     wgpu.LoadOp_Clear,
			DepthStoreOp:    wgpu.StoreOp_Store,
			DepthClearValue: desc.Depth.DepthClearValue,
		}
	}
	return &RenderPass{raw: e.raw.BeginRenderPass(rpd)}
}

func (e *encoder) Finish() (gpu.CommandBuffer, error) {
	cb, err := e.raw.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return nil, errors.Wrap(err, "finish command encoder")
	}
	return &commandBuffer{raw: cb}, nil
}

func (e *encoder) Release() { e.raw.Release() }

type commandBuffer struct {
	raw *wgpu.CommandBuffer
}

func (c *commandBuffer) Release() { c.raw.Release() }

// RenderPass is an open wgpu render pass. Renderers record into Encoder.
type RenderPass struct {
	raw   *wgpu.RenderPassEncoder
	ended bool
}

// Encoder returns the pass encoder for draw recording.
func (p *RenderPass) Encoder() *wgpu.RenderPassEncoder { return p.raw }

func (p *RenderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.raw.End()
	p.raw.Release()
}
