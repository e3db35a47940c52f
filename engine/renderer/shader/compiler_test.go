package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWGSL = `
struct VertexInput {
    @location(0) position: vec4<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = in.position;
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

func TestCompileValidWGSL(t *testing.T) {
	c := NewCompiler()

	compiled, err := c.Compile("triangle", validWGSL)
	require.NoError(t, err)
	require.NotNil(t, compiled)

	assert.Equal(t, "triangle", compiled.Label)
	assert.Equal(t, validWGSL, compiled.WGSL)

	// SPIR-V modules open with the magic number 0x07230203.
	require.NotEmpty(t, compiled.SPIRV)
	assert.Equal(t, uint32(0x07230203), compiled.SPIRV[0])
}

func TestCompileInvalidWGSL(t *testing.T) {
	c := NewCompiler()

	compiled, err := c.Compile("broken", "@vertex fn vs_main( -> {")
	require.Error(t, err)
	assert.Nil(t, compiled)
	assert.Contains(t, err.Error(), "broken")
}
