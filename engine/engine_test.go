package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-gfx/lumen/engine/renderer"
	"github.com/lumen-gfx/lumen/engine/renderer/pipeline"
	"github.com/lumen-gfx/lumen/engine/window"
)

// scriptWindow drives the engine's update callback for a fixed number of
// ticks, running an optional per-tick script first so tests can inject
// resize and close events at exact loop boundaries.
type scriptWindow struct {
	width, height int
	running       bool
	maxTicks      int
	tick          int
	script        func(w *scriptWindow, tick int)

	onUpdate func()
	onResize func(width, height int)

	closes int
}

var _ window.Window = &scriptWindow{}

func newScriptWindow(width, height, maxTicks int) *scriptWindow {
	return &scriptWindow{width: width, height: height, running: true, maxTicks: maxTicks}
}

func (w *scriptWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }
func (w *scriptWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}
func (w *scriptWindow) SetKeyDownCallback(func(uint32)) {}
func (w *scriptWindow) SetKeyUpCallback(func(uint32))   {}
func (w *scriptWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}
func (w *scriptWindow) IsRunning() bool { return w.running }
func (w *scriptWindow) Close() error {
	w.closes++
	w.running = false
	return nil
}
func (w *scriptWindow) ProcessMessages() {
	for w.running && w.tick < w.maxTicks {
		if w.script != nil {
			w.script(w, w.tick)
		}
		if !w.running {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		w.tick++
	}
}
func (w *scriptWindow) resize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
func (w *scriptWindow) Width() int  { return w.width }
func (w *scriptWindow) Height() int { return w.height }

// mockRenderer records the frame-cycle calls the engine makes. Resize mirrors
// the real renderer's suspend semantics: zero size suspends without
// configuring, non-zero configures and resumes.
type mockRenderer struct {
	configures [][2]int
	suspended  bool
	resizeErr  error

	beginErrs []error // consumed one per BeginFrame
	endErr    error
	initErr   error

	begins   int
	ends     int
	presents int
	releases int
	draws    []string
}

var _ renderer.Renderer = &mockRenderer{}

func (r *mockRenderer) Pipeline(string) pipeline.Pipeline           { return nil }
func (r *mockRenderer) Pipelines() map[string]pipeline.Pipeline     { return nil }
func (r *mockRenderer) RegisterPipelines(...pipeline.Pipeline) error { return nil }
func (r *mockRenderer) RemovePipeline(string)                        {}

func (r *mockRenderer) Resize(width, height int) error {
	if r.resizeErr != nil {
		return r.resizeErr
	}
	if width <= 0 || height <= 0 {
		r.suspended = true
		return nil
	}
	r.suspended = false
	r.configures = append(r.configures, [2]int{width, height})
	return nil
}

func (r *mockRenderer) Suspended() bool                  { return r.suspended }
func (r *mockRenderer) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }

func (r *mockRenderer) InitMeshBuffer(m renderer.Mesh, vertexData []byte, vertexCount int) error {
	if r.initErr != nil {
		return r.initErr
	}
	m.SetVertexCount(vertexCount)
	return nil
}

func (r *mockRenderer) BeginFrame() error {
	if r.suspended {
		return renderer.ErrSurfaceSuspended
	}
	if len(r.beginErrs) > 0 {
		err := r.beginErrs[0]
		r.beginErrs = r.beginErrs[1:]
		if err != nil {
			return err
		}
	}
	r.begins++
	return nil
}

func (r *mockRenderer) DrawCall(pipelineKey string, m renderer.Mesh) error {
	r.draws = append(r.draws, pipelineKey)
	return nil
}

func (r *mockRenderer) EndFrame() error {
	if r.endErr != nil {
		return r.endErr
	}
	r.ends++
	return nil
}

func (r *mockRenderer) Present()                    { r.presents++ }
func (r *mockRenderer) SetPresentMode(renderer.PresentMode) {}
func (r *mockRenderer) Release()                    { r.releases++ }

func TestFrameStateString(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "Acquiring", StateAcquiring.String())
	assert.Equal(t, "Recording", StateRecording.String())
	assert.Equal(t, "Submitting", StateSubmitting.String())
	assert.Equal(t, "Presented", StatePresented.String())
	assert.Equal(t, "Suspended", StateSuspended.String())
	assert.Equal(t, "Terminated", StateTerminated.String())
	assert.Equal(t, "Unknown", FrameState(99).String())
}

func TestRunRequiresWindowAndRenderer(t *testing.T) {
	err := NewEngine().Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window")

	err = NewEngine(WithWindow(newScriptWindow(800, 600, 0))).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer")
}

func TestRunCleanShutdown(t *testing.T) {
	win := newScriptWindow(800, 600, 10)
	r := &mockRenderer{}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	win.script = func(w *scriptWindow, tick int) {
		if tick == 5 {
			eng.RequestClose()
		}
	}

	require.NoError(t, eng.Run())

	assert.Equal(t, StateTerminated, eng.State())
	assert.Equal(t, 5, r.presents)
	assert.Equal(t, r.begins, r.ends)
	assert.Equal(t, 1, r.releases)
	assert.Equal(t, 1, win.closes)
}

func TestZeroResizeSuspendsAndResumes(t *testing.T) {
	win := newScriptWindow(800, 600, 6)
	r := &mockRenderer{}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	win.script = func(w *scriptWindow, tick int) {
		switch tick {
		case 2:
			w.resize(0, 0)
		case 3:
			// The previous tick applied the zero resize at the loop boundary.
			assert.Equal(t, StateSuspended, eng.State())
		case 4:
			w.resize(400, 300)
		}
	}

	require.NoError(t, eng.Run())

	// Two frames before the suspension, two after the resume; the zero-size
	// interval never touched the surface.
	assert.Equal(t, 4, r.presents)
	assert.Equal(t, [][2]int{{400, 300}}, r.configures)
}

func TestResizesCoalescedToLatest(t *testing.T) {
	win := newScriptWindow(800, 600, 3)
	r := &mockRenderer{}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	win.script = func(w *scriptWindow, tick int) {
		if tick == 1 {
			w.resize(100, 100)
			w.resize(250, 200)
			w.resize(400, 300)
		}
	}

	require.NoError(t, eng.Run())

	// Only the most recent size reaches the surface.
	assert.Equal(t, [][2]int{{400, 300}}, r.configures)
}

func TestAcquireTimeoutSkipsFrameWithoutRebuild(t *testing.T) {
	win := newScriptWindow(800, 600, 5)
	r := &mockRenderer{
		beginErrs: []error{
			fmt.Errorf("%w: no texture within deadline", renderer.ErrAcquireTimeout),
			fmt.Errorf("%w: no texture within deadline", renderer.ErrAcquireTimeout),
			fmt.Errorf("%w: no texture within deadline", renderer.ErrAcquireTimeout),
		},
	}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	require.NoError(t, eng.Run())

	// Three ticks skipped, two presented; no reconfiguration happened.
	assert.Equal(t, 2, r.presents)
	assert.Empty(t, r.configures)
	assert.Equal(t, StateTerminated, eng.State())
}

func TestSurfaceLostTriggersReconfiguration(t *testing.T) {
	win := newScriptWindow(800, 600, 4)
	r := &mockRenderer{
		beginErrs: []error{
			fmt.Errorf("%w: swapchain outdated", renderer.ErrSurfaceLost),
		},
	}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	require.NoError(t, eng.Run())

	// Recovery reconfigures at the current window size, then rendering resumes.
	assert.Equal(t, [][2]int{{800, 600}}, r.configures)
	assert.Equal(t, 3, r.presents)
}

func TestSurfaceLostRecoveryFailureIsFatal(t *testing.T) {
	win := newScriptWindow(800, 600, 4)
	r := &mockRenderer{
		beginErrs: []error{
			fmt.Errorf("%w: swapchain outdated", renderer.ErrSurfaceLost),
		},
		resizeErr: errors.New("device unavailable"),
	}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	err := eng.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconfigure lost surface")
	assert.Equal(t, StateTerminated, eng.State())
	assert.Equal(t, 1, win.closes)
}

func TestSubmitFailureIsFatal(t *testing.T) {
	win := newScriptWindow(800, 600, 5)
	r := &mockRenderer{endErr: errors.New("device lost")}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	err := eng.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit frame")
	assert.Zero(t, r.presents)
	assert.Equal(t, StateTerminated, eng.State())
	assert.Equal(t, 1, r.releases)
	assert.Equal(t, 1, win.closes)
}

func TestUnknownAcquireErrorIsFatal(t *testing.T) {
	win := newScriptWindow(800, 600, 5)
	r := &mockRenderer{
		beginErrs: []error{errors.New("validation failure")},
	}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	err := eng.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire frame")
	assert.Equal(t, StateTerminated, eng.State())
}

func TestLoadMeshAndDraw(t *testing.T) {
	win := newScriptWindow(800, 600, 2)
	r := &mockRenderer{}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	m, err := eng.LoadMesh("triangle", []byte{0, 1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, m.VertexCount())

	eng.AddDraw("triangle", m)
	require.NoError(t, eng.Run())

	assert.Equal(t, []string{"triangle", "triangle"}, r.draws)
}

func TestLoadMeshPropagatesUploadError(t *testing.T) {
	r := &mockRenderer{initErr: errors.New("out of device memory")}
	eng := NewEngine(WithWindow(newScriptWindow(800, 600, 0)), WithRenderer(r))

	m, err := eng.LoadMesh("triangle", []byte{0, 1, 2, 3}, 3)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "triangle")
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := &mockRenderer{}
	eng := NewEngine(WithWindow(newScriptWindow(800, 600, 0)), WithRenderer(r))

	eng.Release()
	eng.Release()

	assert.Equal(t, 1, r.releases)
	assert.Equal(t, StateTerminated, eng.State())
}

func TestCloseBeforeRunTerminatesImmediately(t *testing.T) {
	win := newScriptWindow(800, 600, 5)
	r := &mockRenderer{}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	eng.RequestClose()
	require.NoError(t, eng.Run())

	assert.Zero(t, r.begins)
	assert.Equal(t, StateTerminated, eng.State())
	assert.Equal(t, 1, win.closes)
}

func TestStartupWhileSuspendedWindow(t *testing.T) {
	win := newScriptWindow(0, 0, 3)
	r := &mockRenderer{suspended: true}
	eng := NewEngine(WithWindow(win), WithRenderer(r))

	win.script = func(w *scriptWindow, tick int) {
		if tick == 1 {
			w.resize(800, 600)
		}
	}

	require.NoError(t, eng.Run())

	assert.Equal(t, [][2]int{{800, 600}}, r.configures)
	assert.Equal(t, 2, r.presents)
}
