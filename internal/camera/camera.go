package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxPitch keeps the view direction away from the poles
	MaxPitch = 89.0

	DefaultFovY        = 45.0
	DefaultNear        = 0.1
	DefaultFar         = 100.0
	DefaultSensitivity = 0.1
)

// Camera is a yaw/pitch look camera driven by raw pointer motion
type Camera struct {
	// Position in world space
	Position mgl32.Vec3

	// Orientation in degrees
	Yaw   float64
	Pitch float64

	// Degrees per pointer unit
	Sensitivity float64

	// Viewport dimensions
	ViewportWidth  int
	ViewportHeight int

	FovY float32
	Near float32
	Far  float32
}

// NewCamera creates a camera at position looking down -Z
func NewCamera(position mgl32.Vec3, width, height int) *Camera {
	return &Camera{
		Position:       position,
		Yaw:            -90,
		Sensitivity:    DefaultSensitivity,
		ViewportWidth:  width,
		ViewportHeight: height,
		FovY:           DefaultFovY,
		Near:           DefaultNear,
		Far:            DefaultFar,
	}
}

// SetViewport updates the viewport dimensions
func (c *Camera) SetViewport(width, height int) {
	c.ViewportWidth = width
	c.ViewportHeight = height
}

// ProcessPointer turns the camera by a raw pointer delta
func (c *Camera) ProcessPointer(dx, dy float64) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.clampOrientation()
}

// Forward returns the unit view direction
func (c *Camera) Forward() mgl32.Vec3 {
	yaw := mgl32.DegToRad(float32(c.Yaw))
	pitch := mgl32.DegToRad(float32(c.Pitch))
	cp := float32(math.Cos(float64(pitch)))
	return mgl32.Vec3{
		cp * float32(math.Cos(float64(yaw))),
		float32(math.Sin(float64(pitch))),
		cp * float32(math.Sin(float64(yaw))),
	}.Normalize()
}

// View returns the world-to-view matrix
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the current viewport
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportHeight > 0 {
		aspect = float32(c.ViewportWidth) / float32(c.ViewportHeight)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// clampOrientation wraps yaw to [-180, 180) and clamps pitch
func (c *Camera) clampOrientation() {
	for c.Yaw >= 180 {
		c.Yaw -= 360
	}
	for c.Yaw < -180 {
		c.Yaw += 360
	}

	if c.Pitch > MaxPitch {
		c.Pitch = MaxPitch
	}
	if c.Pitch < -MaxPitch {
		c.Pitch = -MaxPitch
	}
}
