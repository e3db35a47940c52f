package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickBelowInterval(t *testing.T) {
	p := NewProfiler()
	assert.False(t, p.Tick())
	assert.Equal(t, 1, p.frameCount)
}

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler()
	p.Tick()
	p.Tick()

	// Rewind the window start so the next tick crosses the interval.
	p.lastTime = time.Now().Add(-2 * time.Second)
	assert.True(t, p.Tick())

	// Counters reset after an interval report.
	assert.Equal(t, 0, p.frameCount)
	assert.Equal(t, 0, p.skippedCount)
}

func TestSkippedFrameCounted(t *testing.T) {
	p := NewProfiler()
	p.SkippedFrame()
	p.SkippedFrame()
	assert.Equal(t, 2, p.skippedCount)

	p.lastTime = time.Now().Add(-2 * time.Second)
	assert.True(t, p.Tick())
	assert.Equal(t, 0, p.skippedCount)
}
