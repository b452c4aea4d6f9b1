package webgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"realtime/internal/gpu"
	"realtime/internal/logging"
	"realtime/internal/ui"
)

// uiTexture holds GPU resources for one UI texture.
type uiTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	width     uint32
	height    uint32
}

func (t *uiTexture) release() {
	t.bindGroup.Release()
	t.view.Release()
	t.texture.Release()
}

// UIRenderer records UI meshes into the frame's render pass. Its pipeline
// matches the pass: surface format, frame sample count and depth format.
type UIRenderer struct {
	pipeline       *wgpu.RenderPipeline
	sampler        *wgpu.Sampler
	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	uniformBuffer  *wgpu.Buffer
	uniformBinding *wgpu.BindGroup

	textures map[ui.TextureID]*uiTexture

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	vertexCap    uint64
	indexCap     uint64
	ranges       []meshRange

	srgb bool
}

var _ ui.Renderer = (*UIRenderer)(nil)

// NewUIRenderer builds the UI pipeline for passes targeting format with
// sampleCount samples and a gpu.DepthFormat depth attachment.
func NewUIRenderer(dev gpu.Device, format gputypes.TextureFormat, sampleCount uint32) (*UIRenderer, error) {
	device, err := rawDevice(dev)
	if err != nil {
		return nil, err
	}
	if sampleCount == 0 {
		sampleCount = 1
	}

	r := &UIRenderer{
		textures: make(map[ui.TextureID]*uiTexture),
		srgb:     isSrgb(format),
	}
	if err := r.init(device, textureFormat(format), sampleCount); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *UIRenderer) init(device *wgpu.Device, format wgpu.TextureFormat, sampleCount uint32) error {
	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ui_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: UIShader},
	})
	if err != nil {
		return errors.Wrap(err, "ui shader creation failed")
	}
	defer shader.Release()

	r.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:   wgpu.AddressMode_ClampToEdge,
		AddressModeV:   wgpu.AddressMode_ClampToEdge,
		AddressModeW:   wgpu.AddressMode_ClampToEdge,
		MagFilter:      wgpu.FilterMode_Linear,
		MinFilter:      wgpu.FilterMode_Linear,
		MipmapFilter:   wgpu.MipmapFilterMode_Nearest,
		MaxAnisotrophy: 1,
	})
	if err != nil {
		return errors.Wrap(err, "ui sampler creation failed")
	}

	r.uniformLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ui_uniform_layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStage_Vertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingType_Uniform,
				MinBindingSize: uniformSize,
			},
		}},
	})
	if err != nil {
		return errors.Wrap(err, "ui uniform layout creation failed")
	}

	r.textureLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ui_texture_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStage_Fragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleType_Float,
					ViewDimension: wgpu.TextureViewDimension_2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStage_Fragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingType_Filtering},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "ui texture layout creation failed")
	}

	r.uniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ui_uniforms",
		Size:  uniformSize,
		Usage: wgpu.BufferUsage_Uniform | wgpu.BufferUsage_CopyDst,
	})
	if err != nil {
		return errors.Wrap(err, "ui uniform buffer creation failed")
	}

	r.uniformBinding, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "ui_uniform_bind_group",
		Layout:  r.uniformLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: r.uniformBuffer, Size: uniformSize}},
	})
	if err != nil {
		return errors.Wrap(err, "ui uniform bind group creation failed")
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "ui_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.uniformLayout, r.textureLayout},
	})
	if err != nil {
		return errors.Wrap(err, "ui pipeline layout creation failed")
	}
	defer pipelineLayout.Release()

	r.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ui_pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: ui.VertexSize,
				StepMode:    wgpu.VertexStepMode_Vertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormat_Float32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormat_Float32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormat_Unorm8x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactor_SrcAlpha,
						DstFactor: wgpu.BlendFactor_OneMinusSrcAlpha,
						Operation: wgpu.BlendOperation_Add,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactor_One,
						DstFactor: wgpu.BlendFactor_OneMinusSrcAlpha,
						Operation: wgpu.BlendOperation_Add,
					},
				},
				WriteMask: wgpu.ColorWriteMask_All,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopology_TriangleList,
			CullMode: wgpu.CullMode_None,
		},
		// The UI is drawn over the scene: depth is neither tested nor written.
		DepthStencil: &wgpu.DepthStencilState{
			Format:            textureFormat(gpu.DepthFormat),
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunction_Always,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunction_Always},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunction_Always},
		},
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return errors.Wrap(err, "ui pipeline creation failed")
	}
	return nil
}

// UpdateTexture creates or patches a texture. A whole-texture upload with a
// new size replaces the texture.
func (r *UIRenderer) UpdateTexture(dev gpu.Device, q gpu.Queue, id ui.TextureID, img ui.ImageDelta) error {
	device, err := rawDevice(dev)
	if err != nil {
		return err
	}
	queue, err := rawQueue(q)
	if err != nil {
		return err
	}
	if img.Width == 0 || img.Height == 0 {
		return errors.Errorf("texture %d: empty image", id)
	}
	if want := int(img.Width) * int(img.Height) * 4; len(img.Pixels) != want {
		return errors.Errorf("texture %d: %d bytes of pixels, want %d", id, len(img.Pixels), want)
	}

	tex, ok := r.textures[id]
	var origin wgpu.Origin3D
	if img.Pos != nil {
		if !ok {
			return errors.Errorf("texture %d: partial update of unknown texture", id)
		}
		if img.Pos[0]+img.Width > tex.width || img.Pos[1]+img.Height > tex.height {
			return errors.Errorf("texture %d: partial update out of bounds", id)
		}
		origin = wgpu.Origin3D{X: img.Pos[0], Y: img.Pos[1]}
	} else if !ok || tex.width != img.Width || tex.height != img.Height {
		created, err := r.createTexture(device, img.Width, img.Height)
		if err != nil {
			return errors.Wrapf(err, "texture %d", id)
		}
		if ok {
			tex.release()
		}
		tex = created
		r.textures[id] = tex
		logging.Logger().Debug("ui texture created", "id", id, "width", img.Width, "height", img.Height)
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: tex.texture, MipLevel: 0, Origin: origin, Aspect: wgpu.TextureAspect_All},
		img.Pixels,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: img.Width * 4, RowsPerImage: img.Height},
		&wgpu.Extent3D{Width: img.Width, Height: img.Height, DepthOrArrayLayers: 1},
	)
	return nil
}

func (r *UIRenderer) createTexture(device *wgpu.Device, width, height uint32) (*uiTexture, error) {
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "ui_texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        wgpu.TextureFormat_RGBA8Unorm,
		Usage:         wgpu.TextureUsage_TextureBinding | wgpu.TextureUsage_CopyDst,
	})
	if err != nil {
		return nil, err
	}

	view, err := texture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormat_RGBA8Unorm,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		texture.Release()
		return nil, err
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ui_texture_bind_group",
		Layout: r.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		view.Release()
		texture.Release()
		return nil, err
	}

	return &uiTexture{texture: texture, view: view, bindGroup: bindGroup, width: width, height: height}, nil
}

// FreeTexture releases a texture. Unknown IDs are ignored.
func (r *UIRenderer) FreeTexture(id ui.TextureID) error {
	if tex, ok := r.textures[id]; ok {
		tex.release()
		delete(r.textures, id)
	}
	return nil
}

// UpdateBuffers uploads the meshes and the screen projection.
func (r *UIRenderer) UpdateBuffers(dev gpu.Device, q gpu.Queue, meshes []ui.Mesh, screen ui.ScreenDescriptor) error {
	device, err := rawDevice(dev)
	if err != nil {
		return err
	}
	queue, err := rawQueue(q)
	if err != nil {
		return err
	}

	queue.WriteBuffer(r.uniformBuffer, 0, uniformBytes(screen, r.srgb))

	ranges, vertexBytes, indexBytes := planMeshes(meshes)
	r.ranges = ranges
	if vertexBytes == 0 || indexBytes == 0 {
		return nil
	}

	if r.vertexBuffer, r.vertexCap, err = growBuffer(device, r.vertexBuffer, r.vertexCap, vertexBytes,
		"ui_vertices", wgpu.BufferUsage_Vertex); err != nil {
		return err
	}
	if r.indexBuffer, r.indexCap, err = growBuffer(device, r.indexBuffer, r.indexCap, indexBytes,
		"ui_indices", wgpu.BufferUsage_Index); err != nil {
		return err
	}

	vertices, indices := meshBytes(meshes, ranges, vertexBytes, indexBytes)
	queue.WriteBuffer(r.vertexBuffer, 0, vertices)
	queue.WriteBuffer(r.indexBuffer, 0, indices)
	return nil
}

func growBuffer(device *wgpu.Device, buf *wgpu.Buffer, capacity, need uint64, label string, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64, error) {
	if buf != nil && need <= capacity {
		return buf, capacity, nil
	}
	size := grownCapacity(capacity, need)
	created, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsage_CopyDst,
	})
	if err != nil {
		return buf, capacity, errors.Wrapf(err, "%s buffer creation failed", label)
	}
	if buf != nil {
		buf.Release()
	}
	logging.Logger().Debug("ui buffer grown", "label", label, "size", size)
	return created, size, nil
}

// Execute records the meshes uploaded by the last UpdateBuffers.
func (r *UIRenderer) Execute(pass gpu.RenderPass, meshes []ui.Mesh, screen ui.ScreenDescriptor) error {
	rp, ok := pass.(*RenderPass)
	if !ok {
		return errors.Errorf("ui renderer: foreign render pass %T", pass)
	}
	if len(meshes) != len(r.ranges) {
		return errors.Errorf("ui renderer: %d meshes, %d uploaded", len(meshes), len(r.ranges))
	}
	if len(meshes) == 0 || r.vertexBuffer == nil || r.indexBuffer == nil {
		return nil
	}

	enc := rp.Encoder()
	enc.SetPipeline(r.pipeline)
	enc.SetBindGroup(0, r.uniformBinding, nil)

	size := screen.SizeInPixels
	for i, mesh := range meshes {
		rg := r.ranges[i]
		if rg.vertexSize == 0 || rg.indexSize == 0 {
			continue
		}
		enc.SetVertexBuffer(0, r.vertexBuffer, rg.vertexOffset, rg.vertexSize)
		enc.SetIndexBuffer(r.indexBuffer, wgpu.IndexFormat_Uint16, rg.indexOffset, rg.indexSize)

		for _, cmd := range mesh.Commands {
			tex, ok := r.textures[cmd.Texture]
			if !ok {
				logging.Logger().Debug("ui draw skipped, texture not resident", "id", cmd.Texture)
				continue
			}
			x, y, w, h, visible := scissorRect(cmd.ClipRect, screen.PixelsPerPoint, size)
			if !visible {
				continue
			}
			enc.SetScissorRect(x, y, w, h)
			enc.SetBindGroup(1, tex.bindGroup, nil)
			enc.DrawIndexed(cmd.IndexCount, 1, cmd.IndexOffset, int32(cmd.VertexOffset), 0)
		}
	}
	enc.SetScissorRect(0, 0, size[0], size[1])
	return nil
}

// Release frees every GPU resource.
func (r *UIRenderer) Release() {
	for id, tex := range r.textures {
		tex.release()
		delete(r.textures, id)
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
		r.vertexBuffer = nil
	}
	if r.indexBuffer != nil {
		r.indexBuffer.Release()
		r.indexBuffer = nil
	}
	if r.uniformBinding != nil {
		r.uniformBinding.Release()
	}
	if r.uniformBuffer != nil {
		r.uniformBuffer.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.textureLayout != nil {
		r.textureLayout.Release()
	}
	if r.uniformLayout != nil {
		r.uniformLayout.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
}

func rawDevice(dev gpu.Device) (*wgpu.Device, error) {
	d, ok := dev.(*Device)
	if !ok || d.raw == nil {
		return nil, errors.Errorf("webgpu: foreign device %T", dev)
	}
	return d.raw, nil
}

func rawQueue(q gpu.Queue) (*wgpu.Queue, error) {
	qq, ok := q.(*Queue)
	if !ok || qq.raw == nil {
		return nil, errors.Errorf("webgpu: foreign queue %T", q)
	}
	return qq.raw, nil
}
