package frametarget

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime/internal/gpu"
	"realtime/internal/gpu/gputest"
)

var surfaceCfg = gpu.SurfaceConfig{
	Format: gputypes.TextureFormatBGRA8Unorm,
	Width:  800,
	Height: 600,
}

func TestRebuildMultisampled(t *testing.T) {
	dev := &gputest.Device{}
	m := New(4)

	require.NoError(t, m.Rebuild(dev, surfaceCfg))
	require.Len(t, dev.Attachments, 2)

	color, depth := m.Attachments()
	require.NotNil(t, color)
	require.NotNil(t, depth)

	c := color.(*gputest.View).Desc
	assert.Equal(t, uint32(800), c.Width)
	assert.Equal(t, uint32(600), c.Height)
	assert.Equal(t, uint32(4), c.SampleCount)
	assert.Equal(t, surfaceCfg.Format, c.Format)

	d := depth.(*gputest.View).Desc
	assert.Equal(t, uint32(800), d.Width)
	assert.Equal(t, uint32(600), d.Height)
	assert.Equal(t, uint32(4), d.SampleCount)
	assert.Equal(t, gpu.DepthFormat, d.Format)

	assert.True(t, m.Multisampled())
	assert.True(t, m.Matches(surfaceCfg))
}

func TestRebuildSingleSampleSkipsColor(t *testing.T) {
	dev := &gputest.Device{}
	m := New(1)

	require.NoError(t, m.Rebuild(dev, surfaceCfg))
	require.Len(t, dev.Attachments, 1)

	color, depth := m.Attachments()
	assert.Nil(t, color)
	require.NotNil(t, depth)
	assert.Equal(t, uint32(1), depth.(*gputest.View).Desc.SampleCount)
	assert.False(t, m.Multisampled())
}

func TestRebuildReleasesPrevious(t *testing.T) {
	dev := &gputest.Device{}
	m := New(4)

	require.NoError(t, m.Rebuild(dev, surfaceCfg))
	oldColor, oldDepth := m.Attachments()

	require.NoError(t, m.Rebuild(dev, surfaceCfg.WithSize(1024, 768)))
	assert.True(t, oldColor.(*gputest.View).Released)
	assert.True(t, oldDepth.(*gputest.View).Released)

	color, depth := m.Attachments()
	assert.False(t, color.(*gputest.View).Released)
	assert.Equal(t, uint32(1024), depth.(*gputest.View).Desc.Width)
	assert.Equal(t, uint32(1024), m.Width())
	assert.Equal(t, uint32(768), m.Height())
	assert.False(t, m.Matches(surfaceCfg))
}

func TestRebuildFailureKeepsOldTarget(t *testing.T) {
	dev := &gputest.Device{}
	m := New(4)
	require.NoError(t, m.Rebuild(dev, surfaceCfg))
	color, depth := m.Attachments()

	dev.AttachmentErr = errors.New("device lost")
	require.Error(t, m.Rebuild(dev, surfaceCfg.WithSize(1024, 768)))

	c, d := m.Attachments()
	assert.Same(t, color, c)
	assert.Same(t, depth, d)
	assert.False(t, color.(*gputest.View).Released)
	assert.Equal(t, uint32(800), m.Width())
}

func TestRebuildRejectsZeroArea(t *testing.T) {
	dev := &gputest.Device{}
	m := New(4)
	require.Error(t, m.Rebuild(dev, surfaceCfg.WithSize(0, 600)))
	assert.Empty(t, dev.Attachments)
}

func TestRelease(t *testing.T) {
	dev := &gputest.Device{}
	m := New(4)
	require.NoError(t, m.Rebuild(dev, surfaceCfg))

	m.Release()
	for _, v := range dev.Attachments {
		assert.True(t, v.Released)
	}
	color, depth := m.Attachments()
	assert.Nil(t, color)
	assert.Nil(t, depth)
	assert.False(t, m.Matches(surfaceCfg))
}
