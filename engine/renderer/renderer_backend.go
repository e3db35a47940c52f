package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lumen-gfx/lumen/engine/renderer/pipeline"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// PowerProfile expresses the preferred adapter power class when connecting to
// the GPU. The adapter actually selected must still support presentation to the
// target surface.
type PowerProfile int

const (
	// PowerProfileDefault lets the backend pick any compatible adapter.
	PowerProfileDefault PowerProfile = iota

	// PowerProfileHighPerformance prefers a discrete GPU.
	PowerProfileHighPerformance

	// PowerProfileLowPower prefers an integrated/low-power GPU.
	PowerProfileLowPower
)

// RendererBackend is the backend interface for the Renderer. It owns the GPU
// device connection and the presentable surface, and carries out the per-frame
// acquire/record/submit/present cycle on behalf of the Renderer.
type RendererBackend interface {
	// ConfigureSurface (re)creates the presentation chain bound to the device.
	// Must be called once at startup and again on every resize with a non-zero
	// drawable size. An in-flight frame is allowed to complete against the old
	// configuration; the new one takes effect on the next acquisition.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels (must be > 0)
	//   - height: the new height of the surface in pixels (must be > 0)
	//
	// Returns:
	//   - error: an error if the surface cannot be reconfigured
	ConfigureSurface(width, height int) error

	// SurfaceFormat returns the pixel format the surface is currently configured
	// with. The zero format is returned before the first ConfigureSurface call.
	//
	// Returns:
	//   - wgpu.TextureFormat: the current surface pixel format
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode sets the surface present mode which controls how frames are
	// delivered to the display. Takes effect on the next ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the GPU pipeline object for the provided
	// pipeline against the current surface format. The compiled shader modules
	// must already be present on the pipeline's shaders.
	//
	// Parameters:
	//   - p: the pipeline object containing compiled shaders and configuration
	//
	// Returns:
	//   - error: ErrPipelineRejected (wrapped) if the device refuses the pipeline
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffer creates an immutable GPU vertex buffer from raw byte data
	// and stores it on the given Mesh. One-shot upload; the buffer is never
	// mutated afterwards.
	//
	// Parameters:
	//   - m: the Mesh to store the created buffer on
	//   - vertexData: the raw interleaved vertex bytes to upload
	//   - vertexCount: the number of vertices, used for draw calls
	//
	// Returns:
	//   - error: ErrOutOfDeviceMemory (wrapped) if the allocation fails
	InitMeshBuffer(m Mesh, vertexData []byte, vertexCount int) error

	// BeginFrame acquires the next presentable frame, creates a command encoder,
	// and begins the render pass that clears the target to the background color.
	// At most one frame may be outstanding: calling BeginFrame again before
	// EndFrame+Present returns ErrFrameInFlight.
	//
	// Returns:
	//   - error: ErrAcquireTimeout, ErrSurfaceLost, or ErrFrameInFlight (wrapped),
	//     or another fatal error
	BeginFrame() error

	// DrawCall encodes a single non-indexed draw over the mesh's full vertex set
	// within the current render pass started by BeginFrame.
	//
	// Parameters:
	//   - p: the pipeline to bind
	//   - m: the mesh holding the vertex buffer
	DrawCall(p pipeline.Pipeline, m Mesh)

	// EndFrame ends the render pass and submits the command buffer to the device
	// queue. A submission failure indicates device loss and is fatal.
	//
	// Returns:
	//   - error: a fatal error if command finalization or submission fails
	EndFrame() error

	// Present hands the acquired frame back to the surface for presentation and
	// releases the frame handle. Must be called once per successful EndFrame.
	Present()

	// Release frees all backend-owned GPU resources in reverse-acquisition order
	// (any in-flight frame state, then the surface chain, then the device).
	// Safe to call multiple times; subsequent calls are no-ops.
	Release()
}
