package geometry

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexSizeMatchesLayoutStride(t *testing.T) {
	v := Vertex{}
	assert.Equal(t, 32, v.Size())
	assert.Equal(t, uint64(32), Layout()[0].ArrayStride)
}

func TestVertexMarshalLittleEndian(t *testing.T) {
	v := Vertex{
		Position: [4]float32{1.0, -2.0, 0.5, 1.0},
		Color:    [4]float32{0.25, 0.5, 0.75, 1.0},
	}

	buf := v.Marshal()
	require.Len(t, buf, 32)

	assert.Equal(t, float32(1.0), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	assert.Equal(t, float32(-2.0), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])))
	assert.Equal(t, float32(1.0), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])))
}

func TestMarshalInterleavesVertices(t *testing.T) {
	vertices := Triangle()
	buf := Marshal(vertices)

	require.Len(t, buf, len(vertices)*32)
	for i, v := range vertices {
		assert.Equal(t, v.Marshal(), buf[i*32:(i+1)*32])
	}
}

func TestLayoutAttributes(t *testing.T) {
	layouts := Layout()
	require.Len(t, layouts, 1)

	layout := layouts[0]
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 2)

	position := layout.Attributes[0]
	assert.Equal(t, wgpu.VertexFormatFloat32x4, position.Format)
	assert.Equal(t, uint64(0), position.Offset)
	assert.Equal(t, uint32(0), position.ShaderLocation)

	color := layout.Attributes[1]
	assert.Equal(t, wgpu.VertexFormatFloat32x4, color.Format)
	assert.Equal(t, uint64(16), color.Offset)
	assert.Equal(t, uint32(1), color.ShaderLocation)
}

func TestTriangleVertices(t *testing.T) {
	vertices := Triangle()
	require.Len(t, vertices, 3)

	// One red, one green, one blue corner, all fully opaque in clip space.
	assert.Equal(t, [4]float32{1, 0, 0, 1}, vertices[0].Color)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, vertices[1].Color)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, vertices[2].Color)
	for _, v := range vertices {
		assert.Equal(t, float32(1.0), v.Position[3])
	}
}

func TestTriangleShaderSourceEmbedded(t *testing.T) {
	assert.Contains(t, TriangleShaderSource, "vs_main")
	assert.Contains(t, TriangleShaderSource, "fs_main")
	assert.Contains(t, TriangleShaderSource, "@location(0) position")
	assert.Contains(t, TriangleShaderSource, "@location(1) color")
}
