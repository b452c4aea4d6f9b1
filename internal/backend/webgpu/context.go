// Package webgpu implements the GPU context and the UI renderer on
// go-webgpu.
package webgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"realtime/internal/config"
	"realtime/internal/gpu"
	"realtime/internal/logging"
)

// Options selects the native backends the instance may use.
type Options struct {
	// Backends defaults to the primary backends of the platform.
	Backends wgpu.InstanceBackend
}

// Context owns the instance, surface, adapter, device, queue and swap chain.
type Context struct {
	instance  *wgpu.Instance
	surface   *wgpu.Surface
	adapter   *wgpu.Adapter
	device    *wgpu.Device
	queue     *wgpu.Queue
	swapChain *wgpu.SwapChain

	dev  *Device
	q    *Queue
	caps gpu.Capabilities
}

// Initialize creates the instance and the surface described by desc, then
// selects an adapter. It fails with gpu.ErrAdapterUnavailable.
func Initialize(desc *wgpu.SurfaceDescriptor, opts Options) (*Context, error) {
	backends := opts.Backends
	if backends == 0 {
		backends = wgpu.InstanceBackend_Primary
	}

	c := &Context{}
	c.instance = wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: backends})
	if c.instance == nil {
		return nil, errors.Wrap(gpu.ErrAdapterUnavailable, "create instance")
	}

	c.surface = c.instance.CreateSurface(desc)
	if c.surface == nil {
		c.Release()
		return nil, errors.Wrap(gpu.ErrAdapterUnavailable, "create surface")
	}

	// Try with surface first, then without
	var err error
	c.adapter, err = c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.surface,
		PowerPreference:   wgpu.PowerPreference_HighPerformance,
	})
	if err != nil {
		logging.Logger().Warn("no surface-compatible adapter, retrying without surface", "error", err)
		c.adapter, err = c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: wgpu.PowerPreference_HighPerformance,
		})
		if err != nil {
			c.Release()
			return nil, errors.Wrap(gpu.ErrAdapterUnavailable, err.Error())
		}
	}

	props := c.adapter.GetProperties()
	limits := c.adapter.GetLimits()
	c.caps = gpu.Capabilities{
		Backend:               fmt.Sprint(props.BackendType),
		MaxTextureDimension2D: limits.Limits.MaxTextureDimension2D,
		Constrained: props.BackendType == wgpu.BackendType_OpenGL ||
			props.BackendType == wgpu.BackendType_OpenGLES,
	}

	logging.Logger().Info("adapter selected",
		"name", props.Name, "driver", props.DriverDescription, "backend", c.caps.Backend)
	return c, nil
}

// Capabilities returns the adapter probe result.
func (c *Context) Capabilities() gpu.Capabilities { return c.caps }

// RequestDevice creates the logical device and queue. On constrained
// profiles the 2D texture limit is capped at the profile's value.
func (c *Context) RequestDevice(profile config.Profile) error {
	limits := c.adapter.GetLimits().Limits
	if profile.MaxTextureDimension2D > 0 && limits.MaxTextureDimension2D > profile.MaxTextureDimension2D {
		limits.MaxTextureDimension2D = profile.MaxTextureDimension2D
	}

	device, err := c.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "realtime_device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: limits},
	})
	if err != nil {
		return errors.Wrap(gpu.ErrDeviceUnavailable, err.Error())
	}

	c.device = device
	c.queue = device.GetQueue()
	c.dev = &Device{raw: c.device}
	c.q = &Queue{raw: c.queue}

	logging.Logger().Info("device created",
		"max_texture_dimension_2d", limits.MaxTextureDimension2D,
		"samples", profile.SampleCount, "constrained", profile.Constrained)
	return nil
}

// PreferredFormat returns the surface's preferred color format.
func (c *Context) PreferredFormat() gputypes.TextureFormat {
	return neutralFormat(c.surface.GetPreferredFormat(c.adapter))
}

// Configure recreates the swap chain for cfg. Zero-area configurations are
// ignored.
func (c *Context) Configure(cfg gpu.SurfaceConfig) error {
	if !cfg.Valid() {
		return nil
	}
	if c.device == nil {
		return errors.Wrap(gpu.ErrDeviceUnavailable, "configure before RequestDevice")
	}

	if c.swapChain != nil {
		c.swapChain.Release()
		c.swapChain = nil
	}

	swapChain, err := c.device.CreateSwapChain(c.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      textureFormat(cfg.Format),
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: presentMode(cfg.PresentMode),
	})
	if err != nil {
		return errors.Wrap(err, "create swap chain")
	}
	c.swapChain = swapChain
	return nil
}

// Acquire returns the next swap chain image.
func (c *Context) Acquire() (gpu.SurfaceTexture, error) {
	if c.swapChain == nil {
		return nil, gpu.ErrSurfaceOutdated
	}
	view, err := c.swapChain.GetCurrentTextureView()
	if err != nil {
		return nil, classifyAcquire(err)
	}
	if view == nil {
		return nil, gpu.ErrSurfaceOutdated
	}
	return &surfaceTexture{swapChain: c.swapChain, view: &textureView{raw: view}}, nil
}

// Device returns the device wrapper. Nil before RequestDevice.
func (c *Context) Device() gpu.Device { return c.dev }

// Queue returns the queue wrapper. Nil before RequestDevice.
func (c *Context) Queue() gpu.Queue { return c.q }

// Release frees everything in reverse creation order.
func (c *Context) Release() {
	if c.swapChain != nil {
		c.swapChain.Release()
		c.swapChain = nil
	}
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
	c.dev, c.q = nil, nil
}

type surfaceTexture struct {
	swapChain *wgpu.SwapChain
	view      *textureView
}

func (s *surfaceTexture) View() gpu.View { return s.view }

func (s *surfaceTexture) Present() {
	s.swapChain.Present()
	s.view.Release()
}

func (s *surfaceTexture) Discard() {
	s.view.Release()
}
