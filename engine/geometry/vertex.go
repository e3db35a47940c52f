package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// TriangleShaderSource is the canonical WGSL program for the static-color
// pipeline. Matches the Vertex layout exactly (see Layout).
//
//go:embed assets/triangle.wgsl
var TriangleShaderSource string

// Vertex is the GPU-aligned representation of a single colored vertex.
// Matches the WGSL VertexInput struct layout exactly (see TriangleShaderSource).
// Size: 32 bytes (two vec4<f32> fields, no padding required).
type Vertex struct {
	Position [4]float32 // offset  0: position in clip space (16 bytes)
	Color    [4]float32 // offset 16: RGBA color (16 bytes)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the Vertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte little-endian buffer ready for GPU upload.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Position[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(v.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(v.Color[3]))
	return buf
}

// Marshal serializes a vertex slice into a contiguous interleaved byte buffer
// suitable for one-shot GPU upload.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the interleaved vertex data, 32 bytes per vertex
func Marshal(vertices []Vertex) []byte {
	buf := make([]byte, 0, len(vertices)*32)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// Layout returns the vertex buffer layout for the Vertex struct: two Float32x4
// attributes at shader locations 0 (position) and 1 (color), interleaved with a
// 32-byte stride.
//
// Returns:
//   - []wgpu.VertexBufferLayout: the single-buffer layout description
func Layout() []wgpu.VertexBufferLayout {
	return []wgpu.VertexBufferLayout{
		{
			ArrayStride: 32,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{
					Format:         wgpu.VertexFormatFloat32x4,
					Offset:         0,
					ShaderLocation: 0,
				},
				{
					Format:         wgpu.VertexFormatFloat32x4,
					Offset:         16,
					ShaderLocation: 1,
				},
			},
		},
	}
}

// Triangle returns the canonical static triangle: three clip-space vertices
// colored red, green, and blue.
//
// Returns:
//   - []Vertex: the three triangle vertices
func Triangle() []Vertex {
	return []Vertex{
		{Position: [4]float32{0.0, 0.5, 0.0, 1.0}, Color: [4]float32{1.0, 0.0, 0.0, 1.0}},
		{Position: [4]float32{-0.5, -0.5, 0.0, 1.0}, Color: [4]float32{0.0, 1.0, 0.0, 1.0}},
		{Position: [4]float32{0.5, -0.5, 0.0, 1.0}, Color: [4]float32{0.0, 0.0, 1.0, 1.0}},
	}
}
