package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{
		title:  "Default Window Title",
		width:  1280,
		height: 720,
	}

	for _, opt := range []WindowBuilderOption{
		WithTitle("Triangle"),
		WithWidth(800),
		WithHeight(600),
	} {
		opt(w)
	}

	assert.Equal(t, "Triangle", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
}

func TestCallbacksNilSafeBeforePlatformInit(t *testing.T) {
	w := &engineWindow{}

	// No platform window yet; the wrappers must degrade instead of panicking.
	assert.Nil(t, w.SurfaceDescriptor())
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Close())
}
