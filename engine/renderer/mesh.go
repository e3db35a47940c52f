package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label        string
	vertexBuffer *wgpu.Buffer
	vertexCount  int
}

// Mesh holds an immutable GPU-resident vertex buffer and its vertex count.
// The buffer is uploaded once via Renderer.InitMeshBuffer, read every frame,
// and never mutated.
type Mesh interface {
	// Label returns the identifier used for GPU resource labels.
	//
	// Returns:
	//   - string: the mesh label
	Label() string

	// VertexBuffer returns the GPU vertex buffer, or nil before upload.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer
	VertexBuffer() *wgpu.Buffer

	// VertexCount returns the number of vertices in the buffer.
	//
	// Returns:
	//   - int: the vertex count, used for draw calls
	VertexCount() int

	// SetVertexBuffer stores the uploaded GPU vertex buffer on the mesh.
	//
	// Parameters:
	//   - buf: the GPU buffer holding the vertex data
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetVertexCount stores the number of vertices represented by the buffer.
	//
	// Parameters:
	//   - count: the vertex count
	SetVertexCount(count int)

	// Release frees the GPU vertex buffer if one is held. Safe to call multiple
	// times; subsequent calls are no-ops.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh creates an empty Mesh with the given label. Upload vertex data with
// Renderer.InitMeshBuffer before drawing with it.
//
// Parameters:
//   - label: the identifier used for GPU resource labels
//
// Returns:
//   - Mesh: the new, not-yet-uploaded mesh
func NewMesh(label string) Mesh {
	return &mesh{label: label}
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) VertexBuffer() *wgpu.Buffer {
	return m.vertexBuffer
}

func (m *mesh) VertexCount() int {
	return m.vertexCount
}

func (m *mesh) SetVertexBuffer(buf *wgpu.Buffer) {
	m.vertexBuffer = buf
}

func (m *mesh) SetVertexCount(count int) {
	m.vertexCount = count
}

func (m *mesh) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
}
