package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lumen-gfx/lumen/engine/renderer/shader"
)

// RendererBuilderOption is a functional option used to configure a Renderer during construction.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the initial present mode for the surface.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that sets the present mode for this Renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithPowerProfile sets the preferred adapter power class used when connecting
// to the GPU. The default lets the backend pick any compatible adapter.
//
// Parameters:
//   - profile: the PowerProfile to request during adapter selection
//
// Returns:
//   - RendererBuilderOption: a function that sets the power profile for this Renderer
func WithPowerProfile(profile PowerProfile) RendererBuilderOption {
	return func(r *renderer) {
		r.powerProfile = profile
	}
}

// WithForceSoftwareRenderer forces selection of a software fallback adapter
// instead of a hardware GPU. Useful for headless environments and CI.
//
// Returns:
//   - RendererBuilderOption: a function that enables the software fallback adapter
func WithForceSoftwareRenderer() RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = true
	}
}

// WithShaderCompiler overrides the default shader Compiler collaborator.
//
// Parameters:
//   - c: the Compiler to delegate shader compilation to
//
// Returns:
//   - RendererBuilderOption: a function that sets the shader compiler for this Renderer
func WithShaderCompiler(c shader.Compiler) RendererBuilderOption {
	return func(r *renderer) {
		r.compiler = c
	}
}

// WithClearColor overrides the background color the render pass clears to at
// the start of every frame.
//
// Parameters:
//   - color: the clear color in linear RGBA
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear color for this Renderer
func WithClearColor(color wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithShaderWorkers overrides the number of goroutines used for parallel
// shader compilation during RegisterPipelines. Defaults to NumCPU-1 (min 1).
//
// Parameters:
//   - workers: the number of compile workers (values < 1 are clamped to 1)
//
// Returns:
//   - RendererBuilderOption: a function that sets the compile worker count
func WithShaderWorkers(workers int) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderWorkers = max(workers, 1)
	}
}

// WithBackend injects a pre-built RendererBackend, bypassing backend creation.
// Intended for tests that substitute a mock backend.
//
// Parameters:
//   - b: the backend to use
//
// Returns:
//   - RendererBuilderOption: a function that sets the backend for this Renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}
