package webgpu

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"realtime/internal/ui"
)

// uniformSize is the size of uiUniforms, rounded up to the struct
// alignment of 16.
const uniformSize = 80

// meshRange locates one mesh inside the shared vertex and index buffers.
type meshRange struct {
	vertexOffset uint64
	vertexSize   uint64
	indexOffset  uint64
	indexSize    uint64
}

// planMeshes packs meshes back to back. Every range starts on a 4-byte
// boundary so that buffer writes and bindings stay aligned.
func planMeshes(meshes []ui.Mesh) (ranges []meshRange, vertexBytes, indexBytes uint64) {
	ranges = make([]meshRange, len(meshes))
	for i, m := range meshes {
		vs := uint64(len(m.Vertices)) * ui.VertexSize
		is := uint64(len(m.Indices)) * 2
		ranges[i] = meshRange{
			vertexOffset: vertexBytes,
			vertexSize:   vs,
			indexOffset:  indexBytes,
			indexSize:    is,
		}
		vertexBytes += align4(vs)
		indexBytes += align4(is)
	}
	return ranges, vertexBytes, indexBytes
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// grownCapacity returns the buffer size to allocate for need bytes given the
// current capacity. Buffers at least double so steady-state frames never
// reallocate.
func grownCapacity(current, need uint64) uint64 {
	if need <= current {
		return current
	}
	c := current * 2
	if c < need {
		c = need
	}
	if c < 1024 {
		c = 1024
	}
	return align4(c)
}

// scissorRect converts a clip rectangle in points to a pixel rectangle
// clamped to the framebuffer. ok is false for empty rectangles.
func scissorRect(clip [4]float32, ppp float32, size [2]uint32) (x, y, w, h uint32, ok bool) {
	if ppp <= 0 {
		ppp = 1
	}
	clamp := func(v float32, max uint32) uint32 {
		r := math.Round(float64(v * ppp))
		if r < 0 {
			return 0
		}
		if r > float64(max) {
			return max
		}
		return uint32(r)
	}

	minX, minY := clamp(clip[0], size[0]), clamp(clip[1], size[1])
	maxX, maxY := clamp(clip[2], size[0]), clamp(clip[3], size[1])
	if maxX <= minX || maxY <= minY {
		return 0, 0, 0, 0, false
	}
	return minX, minY, maxX - minX, maxY - minY, true
}

// uiUniforms mirrors the shader's Uniforms struct.
type uiUniforms struct {
	Projection mgl32.Mat4
	SrgbTarget float32
	_          [3]float32
}

// uniformBytes encodes the projection over the logical screen and the sRGB
// flag.
func uniformBytes(screen ui.ScreenDescriptor, srgb bool) []byte {
	points := screen.SizeInPoints()
	u := uiUniforms{Projection: mgl32.Ortho2D(0, points[0], points[1], 0)}
	if srgb {
		u.SrgbTarget = 1
	}
	return append([]byte(nil), wgpu.ToBytes([]uiUniforms{u})...)
}

// meshBytes serializes meshes into the planned ranges.
func meshBytes(meshes []ui.Mesh, ranges []meshRange, vertexBytes, indexBytes uint64) (vertices, indices []byte) {
	vertices = make([]byte, vertexBytes)
	indices = make([]byte, indexBytes)
	for i, m := range meshes {
		if len(m.Vertices) > 0 {
			copy(vertices[ranges[i].vertexOffset:], wgpu.ToBytes(m.Vertices))
		}
		if len(m.Indices) > 0 {
			copy(indices[ranges[i].indexOffset:], wgpu.ToBytes(m.Indices))
		}
	}
	return vertices, indices
}
