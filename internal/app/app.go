package app

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"realtime/internal/backend/webgpu"
	"realtime/internal/camera"
	"realtime/internal/config"
	"realtime/internal/engine"
	"realtime/internal/frametarget"
	"realtime/internal/gpu"
	"realtime/internal/logging"
	"realtime/internal/render"
	"realtime/internal/ui"
	"realtime/internal/ui/dearimgui"
)

// App owns the window, the GPU context and every component of the frame
// lifecycle.
type App struct {
	cfg *config.Config

	window  *Window
	gpu     *webgpu.Context
	profile config.Profile

	targets    *frametarget.Manager
	uiRenderer *webgpu.UIRenderer
	compositor *ui.Compositor
	camera     *camera.Camera
	renderer   *render.Orchestrator
	loop       *engine.Loop
}

// New opens the window and builds the rendering stack. On error everything
// created so far is released.
func New(cfg *config.Config) (*App, error) {
	runtime.LockOSThread()

	window, err := NewWindow(cfg.Window)
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, window: window}
	if err := app.initGPU(); err != nil {
		app.Cleanup()
		return nil, err
	}
	if err := app.initRendering(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initGPU() error {
	desc, err := surfaceDescriptor(app.window.win)
	if err != nil {
		return errors.Wrap(err, "surface creation failed")
	}

	app.gpu, err = webgpu.Initialize(desc, webgpu.Options{Backends: instanceBackends})
	if err != nil {
		return err
	}

	app.profile = config.ResolveProfile(app.cfg.Rendering, app.gpu.Capabilities())
	return app.gpu.RequestDevice(app.profile)
}

func (app *App) initRendering() error {
	width, height := app.window.FramebufferSize()
	surface := gpu.SurfaceConfig{
		Format:      app.gpu.PreferredFormat(),
		Width:       width,
		Height:      height,
		PresentMode: app.profile.PresentMode,
	}

	engineUI, err := dearimgui.New()
	if err != nil {
		return err
	}

	app.uiRenderer, err = webgpu.NewUIRenderer(app.gpu.Device(), surface.Format, app.profile.SampleCount)
	if err != nil {
		engineUI.Release()
		return err
	}

	state := ui.NewState(app.cfg.UI)
	app.compositor = ui.NewCompositor(engineUI, app.uiRenderer, state)
	app.targets = frametarget.New(app.profile.SampleCount)
	app.camera = camera.NewCamera(mgl32.Vec3{0, 0, 3}, int(width), int(height))

	app.renderer, err = render.New(app.gpu, app.targets, app.compositor, surface, render.Options{
		Camera: app.camera,
		OnReport: func(fps float64) {
			state.FPS = fps
			app.window.SetTitle(fmt.Sprintf("%s | FPS: %.0f", app.cfg.Window.Title, fps))
		},
	})
	if err != nil {
		return err
	}

	app.loop = engine.New(app.window, app.renderer, app.compositor, app.camera, nil)
	app.window.SetHandler(app.loop.HandleEvent)
	return nil
}

// Run drives the event loop until the window closes, escape is pressed
// with the pointer released, ctx is cancelled or a fatal error occurs.
func (app *App) Run(ctx context.Context) error {
	logging.Logger().Info("running",
		"msaa", app.profile.Multisampled(), "samples", app.profile.SampleCount,
		"present_mode", app.profile.PresentMode.String())
	return app.loop.Run(ctx)
}

// Cleanup releases everything in reverse creation order.
func (app *App) Cleanup() {
	if app.renderer != nil {
		app.renderer.Release()
	} else if app.targets != nil {
		app.targets.Release()
	}
	if app.compositor != nil {
		app.compositor.Release()
	}
	if app.uiRenderer != nil {
		app.uiRenderer.Release()
	}
	if app.gpu != nil {
		app.gpu.Release()
	}
	if app.window != nil {
		app.window.Destroy()
	}
}
