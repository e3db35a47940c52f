package renderer

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAcquireError(t *testing.T) {
	tests := []struct {
		name   string
		input  error
		expect error
	}{
		{
			name:   "timeout status",
			input:  errors.New("Surface timed out"),
			expect: ErrAcquireTimeout,
		},
		{
			name:   "timeout keyword",
			input:  errors.New("timeout while acquiring surface texture"),
			expect: ErrAcquireTimeout,
		},
		{
			name:   "outdated surface",
			input:  errors.New("Surface is Outdated"),
			expect: ErrSurfaceLost,
		},
		{
			name:   "lost surface",
			input:  errors.New("surface has been Lost"),
			expect: ErrSurfaceLost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyAcquireError(tt.input)
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestClassifyAcquireErrorPassesUnknownThrough(t *testing.T) {
	err := classifyAcquireError(errors.New("validation error in command encoder"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAcquireTimeout)
	assert.NotErrorIs(t, err, ErrSurfaceLost)
}

func TestToWGPUPresentMode(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, toWGPUPresentMode(PresentModeVSync))
	assert.Equal(t, wgpu.PresentModeImmediate, toWGPUPresentMode(PresentModeUncapped))
}
