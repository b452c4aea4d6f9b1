// Package frametarget owns the transient attachments a frame renders into:
// the multisampled color target and the depth buffer.
package frametarget

import (
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"

	"realtime/internal/gpu"
	"realtime/internal/logging"
)

// Manager recreates the attachments whenever the surface configuration changes.
// Views are lent to the orchestrator for one render pass at a time.
type Manager struct {
	sampleCount uint32

	color gpu.View // nil when sampleCount == 1
	depth gpu.View

	width  uint32
	height uint32
	format gputypes.TextureFormat
}

// New creates an empty manager. sampleCount comes from the startup profile.
func New(sampleCount uint32) *Manager {
	if sampleCount == 0 {
		sampleCount = 1
	}
	return &Manager{sampleCount: sampleCount}
}

// Rebuild recreates both attachments at cfg's size and format. The previous
// views are released only after the new ones exist, so a failed rebuild keeps
// the old target intact.
func (m *Manager) Rebuild(device gpu.Device, cfg gpu.SurfaceConfig) error {
	if !cfg.Valid() {
		return errors.Errorf("frame target: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	var color gpu.View
	if m.sampleCount > 1 {
		var err error
		color, err = device.CreateAttachment(gpu.AttachmentDescriptor{
			Label:       "msaa_color",
			Width:       cfg.Width,
			Height:      cfg.Height,
			SampleCount: m.sampleCount,
			Format:      cfg.Format,
		})
		if err != nil {
			return errors.Wrap(err, "frame target: create color attachment")
		}
	}

	// Depth sample count must match the color attachment.
	depth, err := device.CreateAttachment(gpu.AttachmentDescriptor{
		Label:       "depth",
		Width:       cfg.Width,
		Height:      cfg.Height,
		SampleCount: m.sampleCount,
		Format:      gpu.DepthFormat,
	})
	if err != nil {
		if color != nil {
			color.Release()
		}
		return errors.Wrap(err, "frame target: create depth attachment")
	}

	m.release()
	m.color = color
	m.depth = depth
	m.width = cfg.Width
	m.height = cfg.Height
	m.format = cfg.Format

	logging.Logger().Debug("frame target rebuilt",
		"width", cfg.Width, "height", cfg.Height, "samples", m.sampleCount)
	return nil
}

// Matches reports whether the current attachments already fit cfg.
func (m *Manager) Matches(cfg gpu.SurfaceConfig) bool {
	return m.depth != nil && m.width == cfg.Width && m.height == cfg.Height && m.format == cfg.Format
}

// Attachments returns the borrowed views for one pass. color is nil when
// multisampling is off.
func (m *Manager) Attachments() (color, depth gpu.View) {
	return m.color, m.depth
}

// Multisampled reports whether the color attachment needs a resolve target.
func (m *Manager) Multisampled() bool { return m.sampleCount > 1 }

func (m *Manager) SampleCount() uint32            { return m.sampleCount }
func (m *Manager) Width() uint32                  { return m.width }
func (m *Manager) Height() uint32                 { return m.height }
func (m *Manager) Format() gputypes.TextureFormat { return m.format }

// Release frees the attachments.
func (m *Manager) Release() {
	m.release()
	m.width, m.height = 0, 0
}

func (m *Manager) release() {
	if m.color != nil {
		m.color.Release()
		m.color = nil
	}
	if m.depth != nil {
		m.depth.Release()
		m.depth = nil
	}
}
