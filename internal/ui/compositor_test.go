package ui

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime/internal/config"
	"realtime/internal/gpu"
	"realtime/internal/gpu/gputest"
	"realtime/internal/input"
)

// fakeEngine replays scripted textures and records what it was given.
type fakeEngine struct {
	events   []input.Event
	inputs   []FrameInput
	textures []TextureSource
	meshes   []Mesh
	runErr   error
	released bool

	// slider, when set, is written through SliderInt like a user drag.
	slider func() int32
	// closeWindow clears the open flag like the title bar close button.
	closeWindow bool
}

func (e *fakeEngine) HandleEvent(ev input.Event) { e.events = append(e.events, ev) }
func (e *fakeEngine) WantsPointer() bool         { return false }
func (e *fakeEngine) Release()                   { e.released = true }

func (e *fakeEngine) Run(in FrameInput, declare func(Context)) (FrameOutput, error) {
	if e.runErr != nil {
		return FrameOutput{}, e.runErr
	}
	e.inputs = append(e.inputs, in)
	declare(&fakeContext{engine: e})
	return FrameOutput{Meshes: e.meshes, Textures: e.textures}, nil
}

type fakeContext struct {
	engine *fakeEngine
	labels []string
}

func (c *fakeContext) Window(title string, open *bool, body func()) {
	if c.engine.closeWindow {
		*open = false
	}
	if *open {
		body()
	}
}

func (c *fakeContext) SliderInt(label string, v *int32, min, max int32) bool {
	if c.engine.slider == nil {
		return false
	}
	*v = c.engine.slider()
	return true
}

func (c *fakeContext) Label(text string) { c.labels = append(c.labels, text) }

// fakeRenderer records GPU-side operations.
type fakeRenderer struct {
	resident  map[TextureID]ImageDelta
	uploads   []TextureID
	frees     []TextureID
	buffers   int
	executed  int
	lastMesh  []Mesh
	screen    ScreenDescriptor
	uploadErr error
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{resident: make(map[TextureID]ImageDelta)}
}

func (r *fakeRenderer) UpdateTexture(_ gpu.Device, _ gpu.Queue, id TextureID, img ImageDelta) error {
	if r.uploadErr != nil {
		return r.uploadErr
	}
	r.resident[id] = img
	r.uploads = append(r.uploads, id)
	return nil
}

func (r *fakeRenderer) FreeTexture(id TextureID) error {
	delete(r.resident, id)
	r.frees = append(r.frees, id)
	return nil
}

func (r *fakeRenderer) UpdateBuffers(_ gpu.Device, _ gpu.Queue, meshes []Mesh, screen ScreenDescriptor) error {
	r.buffers++
	r.lastMesh = meshes
	r.screen = screen
	return nil
}

func (r *fakeRenderer) Execute(pass gpu.RenderPass, meshes []Mesh, screen ScreenDescriptor) error {
	r.executed++
	pass.(*gputest.RenderPass).Draw("ui")
	return nil
}

type fakeWindow struct {
	w, h  uint32
	scale float32
}

func (w fakeWindow) FramebufferSize() (uint32, uint32) { return w.w, w.h }
func (w fakeWindow) ScaleFactor() float32              { return w.scale }

func font(version uint64) TextureSource {
	return TextureSource{
		ID:      FontTexture,
		Version: version,
		Image:   ImageDelta{Width: 2, Height: 1, Pixels: make([]byte, 8)},
	}
}

func newTestCompositor(t *testing.T) (*Compositor, *fakeEngine, *fakeRenderer) {
	t.Helper()
	engine := &fakeEngine{textures: []TextureSource{font(1)}}
	renderer := newFakeRenderer()
	return NewCompositor(engine, renderer, NewState(config.UI{ShowConsole: true, Scale: 10})), engine, renderer
}

var win = fakeWindow{w: 1600, h: 900, scale: 2}

func TestPrepareUploadsTexturesOnce(t *testing.T) {
	c, engine, renderer := newTestCompositor(t)
	dev, q := &gputest.Device{}, &gputest.Queue{}

	require.NoError(t, c.Prepare(win, dev, q, 16*time.Millisecond))
	assert.Equal(t, []TextureID{FontTexture}, renderer.uploads)
	assert.Len(t, c.Pending().Set, 1)

	require.Len(t, engine.inputs, 1)
	assert.Equal(t, [2]uint32{1600, 900}, engine.inputs[0].Screen.SizeInPixels)
	assert.Equal(t, float32(2), engine.inputs[0].Screen.PixelsPerPoint)
	assert.Equal(t, 16*time.Millisecond, engine.inputs[0].DeltaTime)
	assert.Equal(t, engine.inputs[0].Screen, renderer.screen)

	pass := &gputest.RenderPass{}
	require.NoError(t, c.Render(pass, win))
	assert.Equal(t, []string{"ui"}, pass.Draws)
	assert.True(t, c.Pending().Empty(), "render consumes the pending delta")

	require.NoError(t, c.Prepare(win, dev, q, 16*time.Millisecond))
	assert.Len(t, renderer.uploads, 1, "unchanged texture is not uploaded again")
	assert.Equal(t, 2, renderer.buffers)
}

func TestPrepareReuploadsChangedTexture(t *testing.T) {
	c, engine, renderer := newTestCompositor(t)
	dev, q := &gputest.Device{}, &gputest.Queue{}

	require.NoError(t, c.Prepare(win, dev, q, 0))
	require.NoError(t, c.Render(&gputest.RenderPass{}, win))

	engine.textures = []TextureSource{font(2)}
	require.NoError(t, c.Prepare(win, dev, q, 0))
	assert.Equal(t, []TextureID{FontTexture, FontTexture}, renderer.uploads)
}

func TestPrepareFreesDroppedTexture(t *testing.T) {
	c, engine, renderer := newTestCompositor(t)
	dev, q := &gputest.Device{}, &gputest.Queue{}

	engine.textures = []TextureSource{font(1), {ID: 7, Version: 1, Image: ImageDelta{Width: 1, Height: 1, Pixels: make([]byte, 4)}}}
	require.NoError(t, c.Prepare(win, dev, q, 0))
	require.NoError(t, c.Render(&gputest.RenderPass{}, win))
	require.Contains(t, renderer.resident, TextureID(7))

	engine.textures = []TextureSource{font(1)}
	require.NoError(t, c.Prepare(win, dev, q, 0))
	assert.Equal(t, []TextureID{7}, renderer.frees)
	assert.NotContains(t, renderer.resident, TextureID(7))
	assert.Equal(t, []TextureID{7}, c.Pending().Free)

	require.NoError(t, c.Render(&gputest.RenderPass{}, win))
	assert.True(t, c.Pending().Empty())
}

func TestPendingAccumulatesUntilRender(t *testing.T) {
	c, engine, renderer := newTestCompositor(t)
	dev, q := &gputest.Device{}, &gputest.Queue{}

	require.NoError(t, c.Prepare(win, dev, q, 0))
	engine.textures = []TextureSource{font(2)}
	require.NoError(t, c.Prepare(win, dev, q, 0))

	assert.Len(t, c.Pending().Set, 2)
	assert.Len(t, renderer.uploads, 3, "pending sets are re-applied until consumed")

	require.NoError(t, c.Render(&gputest.RenderPass{}, win))
	assert.True(t, c.Pending().Empty())
}

func TestTextureFailureAbortsFrame(t *testing.T) {
	c, _, renderer := newTestCompositor(t)
	renderer.uploadErr = errors.New("queue full")

	err := c.Prepare(win, &gputest.Device{}, &gputest.Queue{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, renderer.uploadErr)
	assert.Zero(t, renderer.buffers, "buffers are not uploaded for an aborted frame")
}

func TestEngineFailureAbortsFrame(t *testing.T) {
	c, engine, renderer := newTestCompositor(t)
	engine.runErr = errors.New("no context")

	require.Error(t, c.Prepare(win, &gputest.Device{}, &gputest.Queue{}, 0))
	assert.Empty(t, renderer.uploads)
}

func TestScaleStaysInRange(t *testing.T) {
	c, engine, _ := newTestCompositor(t)
	dev, q := &gputest.Device{}, &gputest.Queue{}
	rng := rand.New(rand.NewSource(7))
	engine.slider = func() int32 { return rng.Int31n(200) - 100 }

	for i := 0; i < 500; i++ {
		require.NoError(t, c.Prepare(win, dev, q, 0))
		s := c.State().Scale
		require.GreaterOrEqual(t, s, int32(config.MinUIScale))
		require.LessOrEqual(t, s, int32(config.MaxUIScale))
	}
}

func TestConsoleStartsClosedByDefault(t *testing.T) {
	s := NewState(config.DefaultConfig().UI)
	assert.False(t, s.WindowOpen)
	assert.Equal(t, int32(10), s.Scale)
}

func TestWindowCloseIsRetained(t *testing.T) {
	c, engine, _ := newTestCompositor(t)
	require.True(t, c.State().WindowOpen)

	engine.closeWindow = true
	require.NoError(t, c.Prepare(win, &gputest.Device{}, &gputest.Queue{}, 0))
	assert.False(t, c.State().WindowOpen)
}

func TestHandleEventForwards(t *testing.T) {
	c, engine, _ := newTestCompositor(t)
	ev := input.KeyEvent(input.KeyTab, true)
	c.HandleEvent(ev)
	assert.Equal(t, []input.Event{ev}, engine.events)
	assert.False(t, c.WantsPointer())
}

func TestReleaseFreesResident(t *testing.T) {
	c, engine, renderer := newTestCompositor(t)
	require.NoError(t, c.Prepare(win, &gputest.Device{}, &gputest.Queue{}, 0))

	c.Release()
	assert.Empty(t, renderer.resident)
	assert.True(t, engine.released)
}

func TestTexturesDeltaAppendOrdering(t *testing.T) {
	var d TexturesDelta
	d.Append(TexturesDelta{Free: []TextureID{3}})
	d.Append(TexturesDelta{Set: []TextureSet{{ID: 3}}})
	assert.Empty(t, d.Free, "a later set cancels the free")
	assert.Len(t, d.Set, 1)

	d.Append(TexturesDelta{Free: []TextureID{3}})
	assert.Empty(t, d.Set, "a later free cancels the set")
	assert.Equal(t, []TextureID{3}, d.Free)

	d.Clear()
	assert.True(t, d.Empty())
}

func TestScreenDescriptorPoints(t *testing.T) {
	s := ScreenFor(win)
	assert.Equal(t, [2]float32{800, 450}, s.SizeInPoints())
	assert.Equal(t, [2]float32{10, 20}, ScreenDescriptor{SizeInPixels: [2]uint32{10, 20}}.SizeInPoints())
}
