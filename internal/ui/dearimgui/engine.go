// Package dearimgui implements the UI engine on Dear ImGui through cimgui-go.
package dearimgui

import (
	"unsafe"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/pkg/errors"

	"realtime/internal/input"
	"realtime/internal/ui"
)

// Engine owns one Dear ImGui context. The font atlas is its only texture and
// is reported as ui.FontTexture.
type Engine struct {
	ctx  *imgui.Context
	io   *imgui.IO
	font ui.TextureSource
	mods modifierState
}

var _ ui.Engine = (*Engine)(nil)

// New creates the context and bakes the font atlas.
func New() (*Engine, error) {
	vtxSize, posOffset, uvOffset, colOffset := imgui.VertexBufferLayout()
	if vtxSize != ui.VertexSize || posOffset != 0 || uvOffset != 8 || colOffset != 16 {
		return nil, errors.Errorf("dearimgui: unexpected vertex layout size=%d pos=%d uv=%d col=%d",
			vtxSize, posOffset, uvOffset, colOffset)
	}
	if idxSize := imgui.IndexBufferLayout(); idxSize != 2 {
		return nil, errors.Errorf("dearimgui: unexpected index size %d", idxSize)
	}

	e := &Engine{ctx: imgui.CreateContext()}
	imgui.SetCurrentContext(e.ctx)
	e.io = imgui.CurrentIO()

	pixels, width, height, bpp := e.io.Fonts().GetTextureDataAsRGBA32()
	if pixels == nil || width <= 0 || height <= 0 {
		imgui.DestroyContext()
		return nil, errors.New("dearimgui: font atlas not built")
	}
	size := int(width) * int(height) * int(bpp)
	e.font = ui.TextureSource{
		ID:      ui.FontTexture,
		Version: 1,
		Image: ui.ImageDelta{
			Width:  uint32(width),
			Height: uint32(height),
			Pixels: append([]byte(nil), unsafe.Slice((*byte)(pixels), size)...),
		},
	}
	return e, nil
}

// HandleEvent queues an event in the ImGui input queue. It is consumed by
// the next NewFrame.
func (e *Engine) HandleEvent(ev input.Event) {
	imgui.SetCurrentContext(e.ctx)

	switch ev.Kind {
	case input.KindCursorMoved:
		e.io.AddMousePosEvent(float32(ev.X), float32(ev.Y))
	case input.KindMouseButton:
		e.io.AddMouseButtonEvent(int32(ev.Button), ev.Pressed)
	case input.KindScroll:
		e.io.AddMouseWheelEvent(float32(ev.X), float32(ev.Y))
	case input.KindChar:
		e.io.AddInputCharacter(uint32(ev.Char))
	case input.KindKey:
		if mod, down, ok := e.mods.update(ev.Key, ev.Pressed); ok {
			e.io.AddKeyEvent(mod, down)
		}
		if k, ok := keyMap[ev.Key]; ok {
			e.io.AddKeyEvent(k, ev.Pressed)
		}
	}
}

// Run executes one ImGui frame.
func (e *Engine) Run(in ui.FrameInput, declare func(ui.Context)) (ui.FrameOutput, error) {
	imgui.SetCurrentContext(e.ctx)

	ppp := in.Screen.PixelsPerPoint
	if ppp <= 0 {
		ppp = 1
	}
	points := in.Screen.SizeInPoints()
	e.io.SetDisplaySize(imgui.Vec2{X: points[0], Y: points[1]})
	e.io.SetDisplayFramebufferScale(imgui.Vec2{X: ppp, Y: ppp})

	dt := float32(in.DeltaTime.Seconds())
	if dt <= 0 {
		dt = 1.0 / 60
	}
	e.io.SetDeltaTime(dt)

	imgui.NewFrame()
	declare(frame{})
	imgui.Render()

	return ui.FrameOutput{
		Meshes:   tessellate(imgui.CurrentDrawData()),
		Textures: []ui.TextureSource{e.font},
	}, nil
}

// WantsPointer reports whether ImGui wants the mouse.
func (e *Engine) WantsPointer() bool {
	return e.io.WantCaptureMouse()
}

// Release destroys the context.
func (e *Engine) Release() {
	if e.ctx == nil {
		return
	}
	imgui.SetCurrentContext(e.ctx)
	imgui.DestroyContext()
	e.ctx = nil
}

// tessellate copies the draw lists out of ImGui-owned memory.
func tessellate(dd *imgui.DrawData) []ui.Mesh {
	if dd == nil {
		return nil
	}

	var meshes []ui.Mesh
	for _, list := range dd.CommandLists() {
		vtx, vtxBytes := list.GetVertexBuffer()
		idx, idxBytes := list.GetIndexBuffer()
		if vtxBytes == 0 || idxBytes == 0 {
			continue
		}

		mesh := ui.Mesh{
			Vertices: append([]ui.Vertex(nil), unsafe.Slice((*ui.Vertex)(vtx), vtxBytes/ui.VertexSize)...),
			Indices:  append([]uint16(nil), unsafe.Slice((*uint16)(idx), idxBytes/2)...),
		}
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() || cmd.ElemCount() == 0 {
				continue
			}
			clip := cmd.ClipRect()
			mesh.Commands = append(mesh.Commands, ui.DrawCmd{
				ClipRect:     [4]float32{clip.X, clip.Y, clip.Z, clip.W},
				Texture:      ui.FontTexture,
				IndexOffset:  uint32(cmd.IdxOffset()),
				IndexCount:   uint32(cmd.ElemCount()),
				VertexOffset: uint32(cmd.VtxOffset()),
			})
		}
		meshes = append(meshes, mesh)
	}
	return meshes
}

// frame is the ui.Context of a running ImGui frame.
type frame struct{}

func (frame) Window(title string, open *bool, body func()) {
	if open != nil && !*open {
		return
	}
	if imgui.BeginV(title, open, imgui.WindowFlagsAlwaysAutoResize) {
		body()
	}
	imgui.End()
}

func (frame) SliderInt(label string, v *int32, min, max int32) bool {
	return imgui.SliderInt(label, v, min, max)
}

func (frame) Label(text string) {
	imgui.TextUnformatted(text)
}

var keyMap = map[input.Key]imgui.Key{
	input.KeyEscape:       imgui.KeyEscape,
	input.KeyEnter:        imgui.KeyEnter,
	input.KeyTab:          imgui.KeyTab,
	input.KeyBackspace:    imgui.KeyBackspace,
	input.KeyDelete:       imgui.KeyDelete,
	input.KeyLeft:         imgui.KeyLeftArrow,
	input.KeyRight:        imgui.KeyRightArrow,
	input.KeyUp:           imgui.KeyUpArrow,
	input.KeyDown:         imgui.KeyDownArrow,
	input.KeyHome:         imgui.KeyHome,
	input.KeyEnd:          imgui.KeyEnd,
	input.KeyPageUp:       imgui.KeyPageUp,
	input.KeyPageDown:     imgui.KeyPageDown,
	input.KeySpace:        imgui.KeySpace,
	input.KeyLeftShift:    imgui.KeyLeftShift,
	input.KeyRightShift:   imgui.KeyRightShift,
	input.KeyLeftControl:  imgui.KeyLeftCtrl,
	input.KeyRightControl: imgui.KeyRightCtrl,
	input.KeyLeftAlt:      imgui.KeyLeftAlt,
	input.KeyRightAlt:     imgui.KeyRightAlt,
	input.KeyA:            imgui.KeyA,
	input.KeyC:            imgui.KeyC,
	input.KeyV:            imgui.KeyV,
	input.KeyX:            imgui.KeyX,
	input.KeyY:            imgui.KeyY,
	input.KeyZ:            imgui.KeyZ,
}

type modifierSlot struct {
	mod, side int
}

var modifierKeys = map[input.Key]modifierSlot{
	input.KeyLeftControl:  {0, 0},
	input.KeyRightControl: {0, 1},
	input.KeyLeftShift:    {1, 0},
	input.KeyRightShift:   {1, 1},
	input.KeyLeftAlt:      {2, 0},
	input.KeyRightAlt:     {2, 1},
}

var modifiers = [3]imgui.Key{imgui.ModCtrl, imgui.ModShift, imgui.ModAlt}

// modifierState tracks both sides of ctrl, shift and alt. Shortcuts test
// the combined modifier, which ImGui only sees when it is sent explicitly.
type modifierState struct {
	down [3][2]bool
}

// update records a key transition. ok is false for non-modifier keys;
// otherwise mod is the combined modifier and down its new state.
func (m *modifierState) update(key input.Key, pressed bool) (mod imgui.Key, down bool, ok bool) {
	slot, ok := modifierKeys[key]
	if !ok {
		return 0, false, false
	}
	m.down[slot.mod][slot.side] = pressed
	return modifiers[slot.mod], m.down[slot.mod][0] || m.down[slot.mod][1], true
}
