package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"realtime/internal/gpu"
)

// FrameInfo is what a scene needs to draw one frame.
type FrameInfo struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Width      uint32
	Height     uint32
	DeltaTime  time.Duration
}

// SceneRenderer draws the 3D scene into the open pass, before the UI.
type SceneRenderer interface {
	DrawScene(pass gpu.RenderPass, frame FrameInfo) error
}

// NopScene draws nothing.
type NopScene struct{}

func (NopScene) DrawScene(gpu.RenderPass, FrameInfo) error { return nil }
