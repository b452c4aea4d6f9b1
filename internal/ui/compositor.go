package ui

import (
	"time"

	"github.com/pkg/errors"

	"realtime/internal/gpu"
	"realtime/internal/input"
	"realtime/internal/logging"
)

// Compositor owns the retained UI state, the pending texture delta and the
// current frame's meshes.
type Compositor struct {
	engine   Engine
	renderer Renderer
	state    *State

	meshes   []Mesh
	pending  TexturesDelta
	uploaded map[TextureID]uint64
	screen   ScreenDescriptor
}

// NewCompositor wires an engine to a GPU renderer.
func NewCompositor(engine Engine, renderer Renderer, state *State) *Compositor {
	return &Compositor{
		engine:   engine,
		renderer: renderer,
		state:    state,
		uploaded: make(map[TextureID]uint64),
	}
}

// State returns the retained widget state.
func (c *Compositor) State() *State { return c.state }

// HandleEvent forwards a raw platform event to the engine.
func (c *Compositor) HandleEvent(ev input.Event) {
	c.engine.HandleEvent(ev)
}

// WantsPointer reports whether the UI is under the pointer.
func (c *Compositor) WantsPointer() bool {
	return c.engine.WantsPointer()
}

// Prepare runs one UI frame: input, declaration, tessellation, texture
// delta and buffer upload. Texture failures abort the frame.
func (c *Compositor) Prepare(win Window, dev gpu.Device, q gpu.Queue, dt time.Duration) error {
	c.screen = ScreenFor(win)

	out, err := c.engine.Run(FrameInput{Screen: c.screen, DeltaTime: dt}, c.state.Declare)
	if err != nil {
		return errors.Wrap(err, "ui: run frame")
	}
	c.meshes = out.Meshes

	c.pending.Append(c.diffTextures(out.Textures))

	for _, set := range c.pending.Set {
		if err := c.renderer.UpdateTexture(dev, q, set.ID, set.Image); err != nil {
			return errors.Wrapf(err, "ui: update texture %d", set.ID)
		}
	}
	for _, id := range c.pending.Free {
		if err := c.renderer.FreeTexture(id); err != nil {
			return errors.Wrapf(err, "ui: free texture %d", id)
		}
	}

	if err := c.renderer.UpdateBuffers(dev, q, c.meshes, c.screen); err != nil {
		return errors.Wrap(err, "ui: update buffers")
	}
	return nil
}

// Render records the prepared meshes into pass, then drops the applied
// texture delta.
func (c *Compositor) Render(pass gpu.RenderPass, win Window) error {
	c.screen = ScreenFor(win)
	if err := c.renderer.Execute(pass, c.meshes, c.screen); err != nil {
		return errors.Wrap(err, "ui: execute")
	}
	c.pending.Clear()
	return nil
}

// Pending returns the texture delta not yet consumed by a render.
func (c *Compositor) Pending() TexturesDelta { return c.pending }

// Meshes returns the meshes of the current frame.
func (c *Compositor) Meshes() []Mesh { return c.meshes }

// Release frees every uploaded texture and the engine.
func (c *Compositor) Release() {
	for id := range c.uploaded {
		if err := c.renderer.FreeTexture(id); err != nil {
			logging.Logger().Warn("ui: free texture on release", "id", id, "error", err)
		}
		delete(c.uploaded, id)
	}
	c.engine.Release()
}

// diffTextures compares the engine's requirements with what has been
// uploaded and records the result as uploaded.
func (c *Compositor) diffTextures(required []TextureSource) TexturesDelta {
	var delta TexturesDelta
	seen := make(map[TextureID]struct{}, len(required))

	for _, src := range required {
		seen[src.ID] = struct{}{}
		if v, ok := c.uploaded[src.ID]; ok && v == src.Version {
			continue
		}
		delta.Set = append(delta.Set, TextureSet{ID: src.ID, Image: src.Image})
		c.uploaded[src.ID] = src.Version
	}
	for id := range c.uploaded {
		if _, ok := seen[id]; !ok {
			delta.Free = append(delta.Free, id)
			delete(c.uploaded, id)
		}
	}

	if !delta.Empty() {
		logging.Logger().Debug("ui texture delta", "set", len(delta.Set), "free", len(delta.Free))
	}
	return delta
}
