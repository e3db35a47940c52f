package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lumen-gfx/lumen/engine/renderer/pipeline"
	"github.com/lumen-gfx/lumen/engine/renderer/shader"
	"github.com/lumen-gfx/lumen/engine/window"
	"github.com/lumen-gfx/lumen/logx"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	compiler      shader.Compiler

	backendType RendererBackendType
	backend     RendererBackend

	// Last known drawable size and the suspended flag. A zero-size resize
	// suspends drawing without touching the surface configuration; the next
	// non-zero resize reconfigures and resumes.
	width, height int
	suspended     bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	powerProfile         PowerProfile
	pendingPresentMode   *PresentMode
	clearColor           wgpu.Color
	shaderWorkers        int

	// compilePool manages a bounded set of reusable goroutines for parallel
	// shader compilation during RegisterPipelines. Workers idle-exit between
	// registration bursts.
	compilePool worker.DynamicWorkerPool

	released bool
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer manages a cache of pipelines, delegates shader compilation to an injected Compiler,
// and implements a backend which allows for multiple backend API implementations to exist.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines: uncompiled shaders are
	// compiled in parallel through the Compiler collaborator, then the GPU
	// pipeline objects are created via the backend and cached by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate
	// GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: ErrShaderCompilation (wrapped) if any shader fails to compile,
	//     ErrPipelineRejected (wrapped) if the device refuses a pipeline
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// RemovePipeline releases the GPU pipeline object cached under the given key
	// and evicts it from the cache. A subsequent RegisterPipelines call with the
	// same key rebuilds it from source. No-op if the key is not cached.
	//
	// Parameters:
	//   - key: the unique identifier of the Pipeline to remove
	RemovePipeline(key string)

	// Resize configures the underlying backend to handle a new surface size.
	// A zero-area size (width or height == 0) suspends drawing without touching
	// the surface; the next non-zero call reconfigures and resumes. If the
	// surface pixel format changes across a reconfiguration, all cached
	// pipelines are rebuilt against the new format.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if reconfiguration or a pipeline rebuild fails
	Resize(width, height int) error

	// Suspended reports whether drawing is suspended due to a zero-area surface.
	//
	// Returns:
	//   - bool: true while the drawable size is zero
	Suspended() bool

	// SurfaceFormat returns the pixel format the surface is currently configured with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the current surface pixel format
	SurfaceFormat() wgpu.TextureFormat

	// InitMeshBuffer creates an immutable GPU vertex buffer from raw byte data and
	// stores it on the given Mesh. One-shot upload; the buffer is never mutated afterwards.
	//
	// Parameters:
	//   - m: the Mesh to store the created buffer on
	//   - vertexData: the raw interleaved vertex bytes to upload to the GPU
	//   - vertexCount: the number of vertices, used for draw calls
	//
	// Returns:
	//   - error: ErrOutOfDeviceMemory (wrapped) if buffer creation fails
	InitMeshBuffer(m Mesh, vertexData []byte, vertexCount int) error

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	// Must be paired with EndFrame after all DrawCall invocations within a single frame.
	//
	// Returns:
	//   - error: ErrSurfaceSuspended if drawing is suspended, ErrAcquireTimeout,
	//     ErrSurfaceLost, or ErrFrameInFlight (wrapped) if acquisition fails,
	//     or another fatal error
	BeginFrame() error

	// DrawCall encodes a single draw command within the current render pass.
	// Multiple DrawCall invocations can be made between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - m: the Mesh holding the vertex buffer
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	DrawCall(pipelineKey string, m Mesh) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	// Must be called after BeginFrame and all DrawCall invocations within a single frame.
	//
	// Returns:
	//   - error: a fatal error if command submission fails (device loss)
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Release frees all cached pipelines and then the backend's GPU resources.
	// Safe to call multiple times; subsequent calls are no-ops.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and window.
// Connecting to the GPU is a one-time, non-retryable step: an error here means the
// environment cannot render at all and the caller should exit.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the platform surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: ErrNoCompatibleAdapter or ErrDeviceCreationFailed (wrapped) if the GPU connection fails
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		compiler:      shader.NewCompiler(),
		backendType:   backendType,
		clearColor:    wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
		shaderWorkers: max(runtime.NumCPU()-1, 1),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		presentMode := PresentModeVSync
		if r.pendingPresentMode != nil {
			presentMode = *r.pendingPresentMode
		}

		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(win.SurfaceDescriptor(), wgpuBackendConfig{
				powerProfile:         r.powerProfile,
				forceFallbackAdapter: r.forceFallbackAdapter,
				presentMode:          presentMode,
				clearColor:           r.clearColor,
			})
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}

	// Queue size of 64 accommodates typical pipeline registration bursts with headroom.
	r.compilePool = worker.NewDynamicWorkerPool(r.shaderWorkers, 64, 1*time.Second)

	if err := r.Resize(win.Width(), win.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		if !r.suspended {
			r.suspended = true
			logx.Logger().Info("surface suspended", "width", width, "height", height)
		}
		return nil
	}

	previousFormat := r.backend.SurfaceFormat()
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	r.width, r.height = width, height
	if r.suspended {
		r.suspended = false
		logx.Logger().Info("surface resumed", "width", width, "height", height)
	}

	// A format change invalidates every registered pipeline; a pure resize
	// never does.
	newFormat := r.backend.SurfaceFormat()
	if newFormat != previousFormat {
		for key, p := range r.pipelineCache {
			if p.TargetFormat() == wgpu.TextureFormat(0) || p.TargetFormat() == newFormat {
				continue
			}
			p.Release()
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return fmt.Errorf("rebuild pipeline %q for format %v: %w", key, newFormat, err)
			}
		}
	}

	return nil
}

func (r *renderer) Suspended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suspended
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make([]pipeline.Pipeline, 0, len(pipelines))
	for _, p := range pipelines {
		if _, exists := r.pipelineCache[p.PipelineKey()]; exists {
			continue
		}
		pending = append(pending, p)
	}
	if len(pending) == 0 {
		return nil
	}

	if err := r.compileShadersLocked(pending); err != nil {
		return err
	}

	for _, p := range pending {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[p.PipelineKey()] = p
		logx.Logger().Info("pipeline registered", "key", p.PipelineKey())
	}
	return nil
}

// compileShadersLocked fans the pending pipelines' uncompiled shaders out
// across the compile pool and blocks until all have finished. The first
// compile failure is returned wrapped in ErrShaderCompilation. Caller must
// hold r.mu.
func (r *renderer) compileShadersLocked(pending []pipeline.Pipeline) error {
	uncompiled := make([]shader.Shader, 0, len(pending)*2)
	seen := make(map[string]bool)
	for _, p := range pending {
		for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
			s := p.Shader(st)
			if s == nil || s.Compiled() != nil || seen[s.Key()] {
				continue
			}
			seen[s.Key()] = true
			uncompiled = append(uncompiled, s)
		}
	}
	if len(uncompiled) == 0 {
		return nil
	}

	// A WaitGroup provides the completion barrier; errors land in a
	// pre-sized slice so workers never contend on a shared error value.
	var wg sync.WaitGroup
	compileErrs := make([]error, len(uncompiled))
	for i, s := range uncompiled {
		wg.Add(1)
		sCap := s
		idx := i
		r.compilePool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()

				compiled, err := r.compiler.Compile(sCap.Key(), sCap.Source())
				if err != nil {
					compileErrs[idx] = err
					return nil, err
				}
				sCap.SetCompiled(compiled)
				return compiled, nil
			},
		})
	}
	wg.Wait()

	for _, err := range compileErrs {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrShaderCompilation, err)
		}
	}
	return nil
}

func (r *renderer) RemovePipeline(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, exists := r.pipelineCache[key]; exists {
		p.Release()
		delete(r.pipelineCache, key)
	}
}

func (r *renderer) InitMeshBuffer(m Mesh, vertexData []byte, vertexCount int) error {
	return r.backend.InitMeshBuffer(m, vertexData, vertexCount)
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	suspended := r.suspended
	r.mu.Unlock()

	if suspended {
		return ErrSurfaceSuspended
	}
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, m Mesh) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DrawCall(p, m)
	return nil
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	for _, p := range r.pipelineCache {
		p.Release()
	}
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	r.backend.Release()
}
