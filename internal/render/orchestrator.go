// Package render drives one frame from surface acquisition to presentation
// and applies resizes to the surface and the frame target.
package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"realtime/internal/camera"
	"realtime/internal/frametarget"
	"realtime/internal/gpu"
	"realtime/internal/logging"
	"realtime/internal/scheduler"
	"realtime/internal/ui"
)

// Phase is the orchestrator's position in the per-frame state machine.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAcquireSurface
	PhaseRecordCommands
	PhaseSubmit
	PhasePresent
)

func (p Phase) String() string {
	switch p {
	case PhaseAcquireSurface:
		return "acquire_surface"
	case PhaseRecordCommands:
		return "record_commands"
	case PhaseSubmit:
		return "submit"
	case PhasePresent:
		return "present"
	default:
		return "idle"
	}
}

// GPU is the part of the GPU context a frame needs.
type GPU interface {
	gpu.Surface
	Device() gpu.Device
	Queue() gpu.Queue
}

// Overlay composites the UI into the pass. Prepare runs before the pass is
// opened and Render inside it.
type Overlay interface {
	Prepare(win ui.Window, dev gpu.Device, q gpu.Queue, dt time.Duration) error
	Render(pass gpu.RenderPass, win ui.Window) error
}

// Options are the optional collaborators of an Orchestrator.
type Options struct {
	// Scene defaults to NopScene.
	Scene SceneRenderer

	// Camera, when set, supplies the scene's view and projection.
	Camera *camera.Camera

	// Stats defaults to scheduler.NewStats(nil).
	Stats *scheduler.Stats

	// OnReport receives every FPS report.
	OnReport func(fps float64)
}

var clearColor = gputypes.Color{R: 0, G: 0, B: 0, A: 1}

// Orchestrator owns the surface configuration and renders frames in strict
// sequence on the calling goroutine.
type Orchestrator struct {
	gpu     GPU
	targets *frametarget.Manager
	overlay Overlay
	scene   SceneRenderer
	camera  *camera.Camera
	stats   *scheduler.Stats

	onReport func(fps float64)

	config gpu.SurfaceConfig
	phase  Phase
}

// New configures the surface with cfg and builds the frame target. A
// zero-area cfg is kept and applied by the first positive Resize.
func New(g GPU, targets *frametarget.Manager, overlay Overlay, cfg gpu.SurfaceConfig, opts Options) (*Orchestrator, error) {
	o := &Orchestrator{
		gpu:      g,
		targets:  targets,
		overlay:  overlay,
		scene:    opts.Scene,
		camera:   opts.Camera,
		stats:    opts.Stats,
		onReport: opts.OnReport,
		config:   cfg,
	}
	if o.scene == nil {
		o.scene = NopScene{}
	}
	if o.stats == nil {
		o.stats = scheduler.NewStats(nil)
	}

	if !cfg.Valid() {
		logging.Logger().Info("surface not configured, window has no area")
		return o, nil
	}
	if err := o.apply(cfg); err != nil {
		return nil, err
	}
	return o, nil
}

// Config returns the current surface configuration.
func (o *Orchestrator) Config() gpu.SurfaceConfig { return o.config }

// Phase returns the current frame phase. It is PhaseIdle between frames.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Resize applies a new window size. Zero-area sizes are ignored.
func (o *Orchestrator) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		logging.Logger().Debug("ignoring zero-area resize", "width", width, "height", height)
		return nil
	}
	return o.apply(o.config.WithSize(width, height))
}

// apply reconfigures the surface and rebuilds the frame target for cfg.
func (o *Orchestrator) apply(cfg gpu.SurfaceConfig) error {
	if err := o.gpu.Configure(cfg); err != nil {
		return errors.Wrapf(err, "render: configure surface %dx%d", cfg.Width, cfg.Height)
	}
	o.config = cfg

	if err := o.targets.Rebuild(o.gpu.Device(), cfg); err != nil {
		return errors.Wrap(err, "render: rebuild frame target")
	}

	logging.Logger().Info("surface configured",
		"width", cfg.Width, "height", cfg.Height,
		"format", cfg.Format, "present_mode", cfg.PresentMode.String())
	return nil
}

// Redraw renders and presents one frame. Dropped frames return nil; a
// returned error aborted the frame and is fatal when gpu.IsFatal reports so.
func (o *Orchestrator) Redraw(win ui.Window, dt time.Duration) error {
	if !o.config.Valid() {
		return nil
	}
	// A failed rebuild during resize leaves the target at the old size.
	if !o.targets.Matches(o.config) {
		if err := o.targets.Rebuild(o.gpu.Device(), o.config); err != nil {
			return errors.Wrap(err, "render: frame target out of date")
		}
	}
	defer func() { o.phase = PhaseIdle }()

	o.phase = PhaseAcquireSurface
	frame, err := o.gpu.Acquire()
	if err != nil {
		return o.acquireFailed(err)
	}

	o.phase = PhaseRecordCommands
	cmd, err := o.record(frame.View(), win, dt)
	if err != nil {
		o.presentCleared(frame)
		return err
	}

	o.phase = PhaseSubmit
	o.gpu.Queue().Submit(cmd)
	cmd.Release()

	o.phase = PhasePresent
	frame.Present()

	if fps, ok := o.stats.Frame(); ok {
		logging.Logger().Info("frame rate", "fps", fps)
		if o.onReport != nil {
			o.onReport(fps)
		}
	}
	return nil
}

// acquireFailed applies the acquisition recovery policy. A lost surface is
// reconfigured and retried on the next scheduled frame.
func (o *Orchestrator) acquireFailed(err error) error {
	switch {
	case errors.Is(err, gpu.ErrOutOfMemory):
		return errors.Wrap(err, "render: acquire surface")
	case errors.Is(err, gpu.ErrSurfaceLost):
		logging.Logger().Warn("surface lost, reconfiguring", "width", o.config.Width, "height", o.config.Height)
		if rerr := o.apply(o.config); rerr != nil {
			return rerr
		}
		return nil
	default:
		logging.Logger().Warn("frame dropped", "error", err)
		return nil
	}
}

// presentCleared hands an aborted frame's image back to the swap chain as a
// cleared image. It discards the image only when even that cannot be recorded.
func (o *Orchestrator) presentCleared(frame gpu.SurfaceTexture) {
	enc, err := o.gpu.Device().CreateCommandEncoder("clear")
	if err != nil {
		frame.Discard()
		return
	}
	defer enc.Release()

	pass := enc.BeginRenderPass(o.passDescriptor(frame.View()))
	pass.End()
	cmd, err := enc.Finish()
	if err != nil {
		frame.Discard()
		return
	}
	o.gpu.Queue().Submit(cmd)
	cmd.Release()
	frame.Present()
}

func (o *Orchestrator) record(surface gpu.View, win ui.Window, dt time.Duration) (gpu.CommandBuffer, error) {
	dev := o.gpu.Device()
	if err := o.overlay.Prepare(win, dev, o.gpu.Queue(), dt); err != nil {
		return nil, errors.Wrap(err, "render: prepare ui")
	}

	enc, err := dev.CreateCommandEncoder("frame")
	if err != nil {
		return nil, errors.Wrap(err, "render: create command encoder")
	}
	defer enc.Release()

	pass := enc.BeginRenderPass(o.passDescriptor(surface))
	err = o.scene.DrawScene(pass, o.frameInfo(dt))
	if err != nil {
		err = errors.Wrap(err, "render: draw scene")
	} else if uerr := o.overlay.Render(pass, win); uerr != nil {
		err = errors.Wrap(uerr, "render: render ui")
	}
	pass.End()
	if err != nil {
		return nil, err
	}

	cmd, err := enc.Finish()
	if err != nil {
		return nil, errors.Wrap(err, "render: finish commands")
	}
	return cmd, nil
}

// passDescriptor binds the multisampled target with the surface image as
// resolve target, or the surface image directly at sample count 1.
func (o *Orchestrator) passDescriptor(surface gpu.View) *gpu.RenderPassDescriptor {
	msaa, depth := o.targets.Attachments()

	color := gpu.ColorAttachment{View: surface, ClearValue: clearColor}
	if o.targets.Multisampled() {
		color.View = msaa
		color.ResolveTarget = surface
	}

	return &gpu.RenderPassDescriptor{
		Label: "frame",
		Color: color,
		Depth: &gpu.DepthAttachment{View: depth, DepthClearValue: 1},
	}
}

func (o *Orchestrator) frameInfo(dt time.Duration) FrameInfo {
	info := FrameInfo{
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		Width:      o.config.Width,
		Height:     o.config.Height,
		DeltaTime:  dt,
	}
	if o.camera != nil {
		info.View = o.camera.View()
		info.Projection = o.camera.Projection()
	}
	return info
}

// Release frees the frame target.
func (o *Orchestrator) Release() {
	o.targets.Release()
}
