package dearimgui

import (
	"testing"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime/internal/input"
	"realtime/internal/ui"
)

func TestEngineFrame(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Release()

	e.HandleEvent(input.Event{Kind: input.KindCursorMoved, X: 10, Y: 10})
	e.HandleEvent(input.KeyEvent(input.KeyTab, true))

	state := &ui.State{Scale: 10, WindowOpen: true}
	in := ui.FrameInput{
		Screen:    ui.ScreenDescriptor{SizeInPixels: [2]uint32{800, 600}, PixelsPerPoint: 1},
		DeltaTime: 16 * time.Millisecond,
	}

	out, err := e.Run(in, state.Declare)
	require.NoError(t, err)

	require.Len(t, out.Textures, 1)
	font := out.Textures[0]
	assert.Equal(t, ui.FontTexture, font.ID)
	assert.NotZero(t, font.Image.Width)
	assert.Len(t, font.Image.Pixels, int(font.Image.Width*font.Image.Height*4))

	require.NotEmpty(t, out.Meshes, "the console window produces geometry")
	for _, m := range out.Meshes {
		for _, cmd := range m.Commands {
			assert.LessOrEqual(t, int(cmd.IndexOffset+cmd.IndexCount), len(m.Indices))
		}
	}
	assert.Equal(t, int32(10), state.Scale)
}

func TestClosedWindowDrawsNothing(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Release()

	state := &ui.State{Scale: 10}
	out, err := e.Run(ui.FrameInput{Screen: ui.ScreenDescriptor{SizeInPixels: [2]uint32{320, 240}}}, state.Declare)
	require.NoError(t, err)

	var indices int
	for _, m := range out.Meshes {
		indices += len(m.Indices)
	}
	assert.Zero(t, indices)
}

func TestModifierStateCombinesSides(t *testing.T) {
	var m modifierState

	mod, down, ok := m.update(input.KeyLeftControl, true)
	require.True(t, ok)
	assert.Equal(t, imgui.ModCtrl, mod)
	assert.True(t, down)

	_, down, _ = m.update(input.KeyRightControl, true)
	assert.True(t, down)
	_, down, _ = m.update(input.KeyLeftControl, false)
	assert.True(t, down, "right ctrl still held")
	_, down, _ = m.update(input.KeyRightControl, false)
	assert.False(t, down)

	mod, down, ok = m.update(input.KeyRightShift, true)
	require.True(t, ok)
	assert.Equal(t, imgui.ModShift, mod)
	assert.True(t, down)

	mod, _, ok = m.update(input.KeyLeftAlt, true)
	require.True(t, ok)
	assert.Equal(t, imgui.ModAlt, mod)

	_, _, ok = m.update(input.KeyC, true)
	assert.False(t, ok)
}

func TestShortcutKeysReachEngine(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Release()

	e.HandleEvent(input.KeyEvent(input.KeyLeftControl, true))
	e.HandleEvent(input.KeyEvent(input.KeyC, true))
	e.HandleEvent(input.KeyEvent(input.KeyC, false))
	e.HandleEvent(input.KeyEvent(input.KeyLeftControl, false))
	assert.False(t, e.mods.down[0][0])

	state := &ui.State{Scale: 10, WindowOpen: true}
	_, err = e.Run(ui.FrameInput{Screen: ui.ScreenDescriptor{SizeInPixels: [2]uint32{320, 240}}}, state.Declare)
	require.NoError(t, err)
}
