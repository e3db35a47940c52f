package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lumen-gfx/lumen/engine/profiler"
	"github.com/lumen-gfx/lumen/engine/renderer"
	"github.com/lumen-gfx/lumen/engine/window"
	"github.com/lumen-gfx/lumen/logx"
)

// resizeEvent is a pending drawable-size change. Only the most recent event
// survives until the next loop boundary; intermediate sizes are coalesced away.
type resizeEvent struct {
	width, height int
}

// drawCommand pairs a cached pipeline key with the mesh it draws each frame.
type drawCommand struct {
	pipelineKey string
	mesh        renderer.Mesh
}

// engine implements the Engine interface.
// Drives the single-threaded frame loop and owns resource teardown ordering.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	state FrameState

	// pendingResize holds the most recent resize event from the window;
	// applied only at the loop boundary, before the next acquisition.
	pendingResize  *resizeEvent
	closeRequested bool

	drawQueue []drawCommand
	meshes    []renderer.Mesh

	// fatalErr records the first unrecoverable error; it stops the loop and is
	// returned from Run.
	fatalErr error

	consecutiveTimeouts int

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	releaseOnce     sync.Once
	windowCloseOnce sync.Once
}

// Engine is the main entry point for the rendering engine.
// It orchestrates the frame loop, the renderer, and window management.
//
// The frame loop is single-threaded: window events, resize application, and
// the acquire/record/submit/present cycle all run on the loop thread, so
// resize and close requests never interleave with a frame in progress.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the underlying renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// State returns the current frame loop state.
	//
	// Returns:
	//   - FrameState: where the loop currently is in the frame lifecycle
	State() FrameState

	// LoadMesh uploads vertex data to an immutable GPU buffer and registers the
	// resulting mesh for teardown when the engine shuts down.
	//
	// Parameters:
	//   - label: the identifier used for GPU resource labels
	//   - vertexData: the raw interleaved vertex bytes to upload
	//   - vertexCount: the number of vertices, used for draw calls
	//
	// Returns:
	//   - renderer.Mesh: the uploaded mesh
	//   - error: an error if the buffer upload fails
	LoadMesh(label string, vertexData []byte, vertexCount int) (renderer.Mesh, error)

	// AddDraw appends a draw command executed every frame between BeginFrame
	// and EndFrame: the cached pipeline identified by pipelineKey draws the
	// mesh's full vertex set.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - m: the mesh to draw
	AddDraw(pipelineKey string, m renderer.Mesh)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// RequestClose asks the frame loop to shut down. The request is applied at
	// the next loop boundary, never mid-frame. Safe to call from any state;
	// subsequent calls are no-ops.
	RequestClose()

	// Run starts the frame loop and blocks until the window closes or an
	// unrecoverable error occurs. Resources are released before Run returns,
	// in reverse-creation order.
	//
	// Returns:
	//   - error: nil on a clean shutdown, or the first unrecoverable error
	Run() error

	// Release frees all engine-owned resources in reverse-creation order:
	// meshes, then pipelines and the GPU backend. Safe to call multiple times;
	// subsequent calls are no-ops.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A window and a renderer must be supplied via WithWindow and WithRenderer
// before Run is called.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		state:            StateIdle,
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) State() FrameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) LoadMesh(label string, vertexData []byte, vertexCount int) (renderer.Mesh, error) {
	m := renderer.NewMesh(label)
	if err := e.renderer.InitMeshBuffer(m, vertexData, vertexCount); err != nil {
		return nil, fmt.Errorf("load mesh %q: %w", label, err)
	}

	e.mu.Lock()
	e.meshes = append(e.meshes, m)
	e.mu.Unlock()

	return m, nil
}

func (e *engine) AddDraw(pipelineKey string, m renderer.Mesh) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drawQueue = append(e.drawQueue, drawCommand{pipelineKey: pipelineKey, mesh: m})
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) RequestClose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeRequested = true
}

func (e *engine) Run() error {
	if e.window == nil {
		return fmt.Errorf("engine requires a window, use WithWindow")
	}
	if e.renderer == nil {
		return fmt.Errorf("engine requires a renderer, use WithRenderer")
	}

	// Resize events are recorded here and applied at the top of the next tick,
	// so a reconfiguration never lands mid-frame.
	e.window.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		e.pendingResize = &resizeEvent{width: width, height: height}
		e.mu.Unlock()
	})

	if e.renderer.Suspended() {
		e.setState(StateSuspended)
	}

	e.window.SetUpdateCallback(e.renderTick)
	e.window.ProcessMessages()

	e.Release()
	e.closeWindow()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fatalErr
}

// renderTick runs one iteration of the frame loop: apply pending resize and
// close requests, then acquire, record, submit, and present a single frame.
func (e *engine) renderTick() {
	e.mu.Lock()
	resize := e.pendingResize
	e.pendingResize = nil
	closing := e.closeRequested
	e.mu.Unlock()

	if closing {
		e.closeWindow()
		return
	}

	if resize != nil {
		if err := e.renderer.Resize(resize.width, resize.height); err != nil {
			e.fail(fmt.Errorf("resize to %dx%d: %w", resize.width, resize.height, err))
			return
		}
	}

	if e.renderer.Suspended() {
		e.setState(StateSuspended)
		return
	}

	tickStart := time.Now()

	e.setState(StateAcquiring)
	if err := e.renderer.BeginFrame(); err != nil {
		e.handleAcquireError(err)
		return
	}
	e.mu.Lock()
	e.consecutiveTimeouts = 0
	e.mu.Unlock()

	e.setState(StateRecording)
	for _, cmd := range e.drawQueue {
		if err := e.renderer.DrawCall(cmd.pipelineKey, cmd.mesh); err != nil {
			logx.Logger().Warn("draw skipped", "pipeline", cmd.pipelineKey, "error", err)
		}
	}

	e.setState(StateSubmitting)
	if err := e.renderer.EndFrame(); err != nil {
		// A failed submission indicates device loss; nothing to recover.
		e.fail(fmt.Errorf("submit frame: %w", err))
		return
	}

	e.renderer.Present()
	e.setState(StatePresented)

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	e.setState(StateIdle)

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(tickStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// handleAcquireError classifies a BeginFrame failure. Timeouts skip the tick,
// a lost surface is recovered by reconfiguring at the current window size, and
// anything unrecognized shuts the loop down.
func (e *engine) handleAcquireError(err error) {
	switch {
	case errors.Is(err, renderer.ErrSurfaceSuspended):
		e.setState(StateSuspended)

	case errors.Is(err, renderer.ErrAcquireTimeout):
		e.mu.Lock()
		e.consecutiveTimeouts++
		timeouts := e.consecutiveTimeouts
		e.mu.Unlock()

		logx.Logger().Warn("frame acquisition timed out, skipping frame",
			"consecutive", timeouts)
		if e.profilingEnabled && e.profiler != nil {
			e.profiler.SkippedFrame()
		}
		e.setState(StateIdle)

	case errors.Is(err, renderer.ErrSurfaceLost):
		logx.Logger().Warn("surface lost, reconfiguring", "error", err)
		if rerr := e.renderer.Resize(e.window.Width(), e.window.Height()); rerr != nil {
			e.fail(fmt.Errorf("reconfigure lost surface: %w", rerr))
			return
		}
		e.setState(StateIdle)

	case errors.Is(err, renderer.ErrFrameInFlight):
		logx.Logger().Warn("frame still in flight, skipping tick")
		e.setState(StateIdle)

	default:
		e.fail(fmt.Errorf("acquire frame: %w", err))
	}
}

// fail records the first unrecoverable error and shuts the loop down.
func (e *engine) fail(err error) {
	e.mu.Lock()
	if e.fatalErr == nil {
		e.fatalErr = err
	}
	e.mu.Unlock()

	logx.Logger().Error("unrecoverable render error, shutting down", "error", err)
	e.closeWindow()
}

// closeWindow destroys the platform window exactly once.
func (e *engine) closeWindow() {
	e.windowCloseOnce.Do(func() {
		if err := e.window.Close(); err != nil {
			logx.Logger().Warn("window close failed", "error", err)
		}
	})
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		e.mu.Lock()
		meshes := e.meshes
		e.meshes = nil
		e.drawQueue = nil
		e.mu.Unlock()

		// Reverse-creation order: meshes first, then pipelines and the GPU
		// backend via the renderer.
		for i := len(meshes) - 1; i >= 0; i-- {
			meshes[i].Release()
		}
		if e.renderer != nil {
			e.renderer.Release()
		}

		e.setState(StateTerminated)
		logx.Logger().Info("engine terminated")
	})
}

func (e *engine) setState(s FrameState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}
