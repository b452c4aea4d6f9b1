// Package gputest provides in-memory implementations of the gpu contracts
// for tests. Everything records what was asked of it.
package gputest

import (
	"github.com/pkg/errors"

	"realtime/internal/gpu"
)

// View is a fake attachment or surface view.
type View struct {
	Desc     gpu.AttachmentDescriptor
	Released bool
}

func (v *View) Release() { v.Released = true }

// Device records created attachments and encoders.
type Device struct {
	Attachments []*View
	Encoders    []*Encoder

	// AttachmentErr, when set, fails every CreateAttachment call.
	AttachmentErr error
	// EncoderErr, when set, fails every CreateCommandEncoder call.
	EncoderErr error
}

func (d *Device) CreateAttachment(desc gpu.AttachmentDescriptor) (gpu.View, error) {
	if d.AttachmentErr != nil {
		return nil, d.AttachmentErr
	}
	v := &View{Desc: desc}
	d.Attachments = append(d.Attachments, v)
	return v, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	if d.EncoderErr != nil {
		return nil, d.EncoderErr
	}
	e := &Encoder{Label: label}
	d.Encoders = append(d.Encoders, e)
	return e, nil
}

// Encoder records the passes begun on it.
type Encoder struct {
	Label    string
	Passes   []*RenderPass
	Finished bool
	Released bool
}

func (e *Encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	p := &RenderPass{Desc: *desc}
	e.Passes = append(e.Passes, p)
	return p
}

func (e *Encoder) Finish() (gpu.CommandBuffer, error) {
	e.Finished = true
	return &CommandBuffer{Encoder: e}, nil
}

func (e *Encoder) Release() { e.Released = true }

// CommandBuffer is a finished fake recording.
type CommandBuffer struct {
	Encoder  *Encoder
	Released bool
}

func (c *CommandBuffer) Release() { c.Released = true }

// RenderPass records draw calls issued by renderers under test.
type RenderPass struct {
	Desc  gpu.RenderPassDescriptor
	Draws []string
	Ended bool
}

// Draw records a named draw call.
func (p *RenderPass) Draw(name string) {
	if p.Ended {
		panic("gputest: draw after End")
	}
	p.Draws = append(p.Draws, name)
}

func (p *RenderPass) End() { p.Ended = true }

// Queue records submissions.
type Queue struct {
	Submitted []gpu.CommandBuffer
}

func (q *Queue) Submit(cmd gpu.CommandBuffer) {
	q.Submitted = append(q.Submitted, cmd)
}

// SurfaceTexture is a fake acquired image.
type SurfaceTexture struct {
	ViewValue *View
	Presented bool
	Discarded bool
}

func (s *SurfaceTexture) View() gpu.View { return s.ViewValue }
func (s *SurfaceTexture) Present()       { s.Presented = true }
func (s *SurfaceTexture) Discard()       { s.Discarded = true }

// Surface hands out textures and fails acquisitions from a scripted queue.
type Surface struct {
	Configs  []gpu.SurfaceConfig
	Acquired []*SurfaceTexture

	// AcquireErrs is consumed front to back, one entry per Acquire.
	// A nil entry (or an empty queue) succeeds.
	AcquireErrs []error

	// ConfigureErr, when set, fails every non-empty Configure call.
	ConfigureErr error
}

func (s *Surface) Configure(cfg gpu.SurfaceConfig) error {
	if !cfg.Valid() {
		return nil
	}
	if s.ConfigureErr != nil {
		return s.ConfigureErr
	}
	s.Configs = append(s.Configs, cfg)
	return nil
}

func (s *Surface) Acquire() (gpu.SurfaceTexture, error) {
	if len(s.AcquireErrs) > 0 {
		err := s.AcquireErrs[0]
		s.AcquireErrs = s.AcquireErrs[1:]
		if err != nil {
			return nil, errors.Wrap(err, "acquire")
		}
	}
	t := &SurfaceTexture{ViewValue: &View{Desc: gpu.AttachmentDescriptor{Label: "surface"}}}
	s.Acquired = append(s.Acquired, t)
	return t, nil
}

// LastConfig returns the most recent applied configuration.
func (s *Surface) LastConfig() (gpu.SurfaceConfig, bool) {
	if len(s.Configs) == 0 {
		return gpu.SurfaceConfig{}, false
	}
	return s.Configs[len(s.Configs)-1], true
}

// Presented counts presented images.
func (s *Surface) Presented() int {
	n := 0
	for _, t := range s.Acquired {
		if t.Presented {
			n++
		}
	}
	return n
}

// Context bundles a fake surface with a fake device and queue, the way the
// real GPU context hands them out.
type Context struct {
	Surface
	DeviceValue Device
	QueueValue  Queue
}

func (c *Context) Device() gpu.Device { return &c.DeviceValue }
func (c *Context) Queue() gpu.Queue   { return &c.QueueValue }
