// Package ui composites the immediate-mode overlay onto the frame. The UI
// engine produces meshes and texture requirements; the GPU renderer uploads
// and records them into the already open render pass.
package ui

import (
	"time"

	"realtime/internal/gpu"
	"realtime/internal/input"
)

// TextureID identifies a UI-owned texture.
type TextureID uint64

// FontTexture is the ID the engine reports for its font atlas.
const FontTexture TextureID = 0

// ScreenDescriptor is the per-frame sizing needed to rasterize UI primitives.
type ScreenDescriptor struct {
	SizeInPixels   [2]uint32
	PixelsPerPoint float32
}

// SizeInPoints returns the logical screen size.
func (s ScreenDescriptor) SizeInPoints() [2]float32 {
	ppp := s.PixelsPerPoint
	if ppp <= 0 {
		ppp = 1
	}
	return [2]float32{float32(s.SizeInPixels[0]) / ppp, float32(s.SizeInPixels[1]) / ppp}
}

// Vertex matches the engine's vertex layout: position and UV in points,
// color as packed RGBA8.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color uint32
}

// VertexSize is the size of Vertex in bytes.
const VertexSize = 20

// DrawCmd draws IndexCount indices of a Mesh clipped to ClipRect
// (min x, min y, max x, max y in points).
type DrawCmd struct {
	ClipRect     [4]float32
	Texture      TextureID
	IndexOffset  uint32
	IndexCount   uint32
	VertexOffset uint32
}

// Mesh is one tessellated draw list. Valid for the current frame only.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
	Commands []DrawCmd
}

// ImageDelta is a full or partial RGBA8 texture upload. Pos is nil for a
// whole-texture upload.
type ImageDelta struct {
	Pos    *[2]uint32
	Width  uint32
	Height uint32
	Pixels []byte
}

// TextureSet pairs a texture with its upload.
type TextureSet struct {
	ID    TextureID
	Image ImageDelta
}

// TexturesDelta lists the textures to upload or free to keep GPU textures in
// sync with the UI.
type TexturesDelta struct {
	Set  []TextureSet
	Free []TextureID
}

// Append adds other after d's entries. Sets are applied before frees, so a
// later set cancels an earlier free of the same ID and a later free cancels
// earlier sets.
func (d *TexturesDelta) Append(other TexturesDelta) {
	for _, set := range other.Set {
		d.Free = removeID(d.Free, set.ID)
	}
	for _, id := range other.Free {
		d.Set = removeSet(d.Set, id)
	}
	d.Set = append(d.Set, other.Set...)
	d.Free = append(d.Free, other.Free...)
}

func removeID(ids []TextureID, id TextureID) []TextureID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeSet(sets []TextureSet, id TextureID) []TextureSet {
	out := sets[:0]
	for _, s := range sets {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// Clear empties the delta, keeping capacity.
func (d *TexturesDelta) Clear() {
	d.Set = d.Set[:0]
	d.Free = d.Free[:0]
}

// Empty reports whether there is nothing to apply.
func (d *TexturesDelta) Empty() bool {
	return len(d.Set) == 0 && len(d.Free) == 0
}

// TextureSource is a texture the engine needs resident. Version changes
// whenever the pixels change.
type TextureSource struct {
	ID      TextureID
	Version uint64
	Image   ImageDelta
}

// FrameInput is what the engine needs to start a frame.
type FrameInput struct {
	Screen    ScreenDescriptor
	DeltaTime time.Duration
}

// FrameOutput is the result of one engine frame.
type FrameOutput struct {
	Meshes   []Mesh
	Textures []TextureSource
}

// Context is the declaration surface handed to the per-frame callback.
type Context interface {
	// Window shows a closable window while *open is true.
	Window(title string, open *bool, body func())
	// SliderInt edits *v within [min, max]. Returns true when changed.
	SliderInt(label string, v *int32, min, max int32) bool
	// Label draws a line of text.
	Label(text string)
}

// Engine is the retained immediate-mode UI engine.
type Engine interface {
	// HandleEvent queues raw input for the next frame.
	HandleEvent(ev input.Event)
	// Run collects queued input, calls declare once and tessellates the result.
	Run(in FrameInput, declare func(Context)) (FrameOutput, error)
	// WantsPointer reports whether the UI is hovered or active.
	WantsPointer() bool
	Release()
}

// Renderer is the GPU side of the compositor. Device and queue are borrowed
// for the duration of one call.
type Renderer interface {
	UpdateTexture(dev gpu.Device, q gpu.Queue, id TextureID, img ImageDelta) error
	FreeTexture(id TextureID) error
	UpdateBuffers(dev gpu.Device, q gpu.Queue, meshes []Mesh, screen ScreenDescriptor) error
	Execute(pass gpu.RenderPass, meshes []Mesh, screen ScreenDescriptor) error
}

// Window is the part of the platform window the compositor reads.
type Window interface {
	FramebufferSize() (width, height uint32)
	ScaleFactor() float32
}

// ScreenFor builds the screen descriptor of win.
func ScreenFor(win Window) ScreenDescriptor {
	w, h := win.FramebufferSize()
	return ScreenDescriptor{
		SizeInPixels:   [2]uint32{w, h},
		PixelsPerPoint: win.ScaleFactor(),
	}
}
