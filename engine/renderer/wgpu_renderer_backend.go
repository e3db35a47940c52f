package renderer

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lumen-gfx/lumen/engine/renderer/pipeline"
	"github.com/lumen-gfx/lumen/engine/renderer/shader"
	"github.com/lumen-gfx/lumen/logx"
)

// wgpuBackendConfig collects the pre-creation settings gathered from the
// renderer builder options before the backend requests a GPU adapter.
type wgpuBackendConfig struct {
	powerProfile         PowerProfile
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
}

// wgpuRendererBackendImpl is the WebGPU implementation of RendererBackend.
// It owns the instance, adapter, surface, logical device, and command queue,
// and tracks the single outstanding frame between BeginFrame and Present.
type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	clearColor    wgpu.Color

	// Frame state between BeginFrame and Present. At most one frame handle is
	// outstanding at any time; BeginFrame enforces this.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	released bool
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend connects to the GPU: it creates the WebGPU instance
// and surface, selects a compatible adapter honoring the power profile, and
// requests a logical device with the spec default limits. This is a one-time,
// non-retryable setup step; both failure modes are fatal to the caller.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, cfg wgpuBackendConfig) (RendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: toWGPUPresentMode(cfg.presentMode),
		clearColor:  cfg.clearColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapterOptions := &wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	}
	switch cfg.powerProfile {
	case PowerProfileHighPerformance:
		adapterOptions.PowerPreference = wgpu.PowerPreferenceHighPerformance
	case PowerProfileLowPower:
		adapterOptions.PowerPreference = wgpu.PowerPreferenceLowPower
	}

	a, err := b.instance.RequestAdapter(adapterOptions)
	if err != nil {
		b.instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoCompatibleAdapter, err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.adapter.Release()
		b.instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceCreationFailed, err)
	}
	b.device = d
	b.queue = d.GetQueue()

	logx.Logger().Info("gpu device connected",
		"powerProfile", cfg.powerProfile,
		"forceFallbackAdapter", cfg.forceFallbackAdapter)

	return b, nil
}

func toWGPUPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		return wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d: dimensions must be > 0", width, height)
	}
	if b.released {
		return fmt.Errorf("configure surface: device already released")
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	logx.Logger().Info("surface configured",
		"width", width, "height", height, "format", *b.surfaceFormat)

	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return wgpu.TextureFormat(0)
	}
	return *b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.presentMode = toWGPUPresentMode(mode)
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return fmt.Errorf("%w: both vertex and fragment shaders must be set", ErrPipelineRejected)
	}
	if vertexShader.Compiled() == nil || fragmentShader.Compiled() == nil {
		return fmt.Errorf("%w: shaders must be compiled before pipeline registration", ErrPipelineRejected)
	}
	if b.surfaceFormat == nil {
		return fmt.Errorf("%w: surface must be configured before pipeline registration", ErrPipelineRejected)
	}

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Compiled().WGSL,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPipelineRejected, err)
	}
	defer vs.Release()

	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Compiled().WGSL,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPipelineRejected, err)
	}
	defer fs.Release()

	// No bind groups exist in this pipeline family, so the layout is empty.
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: p.PipelineKey(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPipelineRejected, err)
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    *b.surfaceFormat,
						WriteMask: p.WriteMask(),
					}
					if p.BlendEnabled() {
						state.Blend = p.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPipelineRejected, err)
	}

	p.SetRenderPipeline(created, *b.surfaceFormat)

	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffer(m Mesh, vertexData []byte, vertexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            m.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOutOfDeviceMemory, err)
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		m.SetVertexBuffer(buf)
	}

	m.SetVertexCount(vertexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// At most one outstanding frame handle: refuse to acquire another surface
	// texture while the previous one has not been presented. This also prevents
	// wgpu-native validation errors like "Surface image is already acquired".
	if b.frameSurface != nil {
		return ErrFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return classifyAcquireError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("create frame view: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("create command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
	})

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, m Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	b.framePass.SetVertexBuffer(0, m.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.Draw(uint32(m.VertexCount()), 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}

	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.releaseFrameLocked()
		// A failed command finalization/submission indicates device loss.
		return fmt.Errorf("finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil

	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()
	b.releaseFrameLocked()
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true

	// Reverse-acquisition order: in-flight frame state, surface chain, device,
	// then the adapter and instance that produced them.
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameLocked()

	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}

	logx.Logger().Info("gpu device released")
}

// releaseFrameLocked drops the outstanding frame view and surface texture.
// Caller must hold b.mu.
func (b *wgpuRendererBackendImpl) releaseFrameLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// classifyAcquireError maps a surface acquisition failure onto the recoverable
// error taxonomy. wgpu-native reports the surface status in the error text;
// anything unrecognized is passed through as fatal.
func classifyAcquireError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return fmt.Errorf("%w: %v", ErrAcquireTimeout, err)
	case strings.Contains(msg, "outdated") || strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	default:
		return fmt.Errorf("acquire frame: %w", err)
	}
}
