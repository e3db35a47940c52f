package main

import (
	"log/slog"
	"os"

	"github.com/lumen-gfx/lumen/engine"
	"github.com/lumen-gfx/lumen/engine/geometry"
	"github.com/lumen-gfx/lumen/engine/renderer"
	"github.com/lumen-gfx/lumen/engine/renderer/pipeline"
	"github.com/lumen-gfx/lumen/engine/renderer/shader"
	"github.com/lumen-gfx/lumen/engine/window"
	"github.com/lumen-gfx/lumen/logx"
)

// Renders a static colored triangle until the window is closed or Escape is
// pressed. Exits 0 on a clean shutdown, 1 if rendering cannot start or fails
// unrecoverably.
func main() {
	logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	log := logx.Logger()

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle("Triangle"),
		window.WithWidth(800),
		window.WithHeight(600),
	)
	if err != nil {
		log.Error("window creation failed", "error", err)
		os.Exit(1)
	}

	// ── Renderer ────────────────────────────────────────────────────────
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(renderer.PresentModeVSync),
	)
	if err != nil {
		log.Error("gpu connection failed", "error", err)
		_ = win.Close()
		os.Exit(1)
	}

	// ── Pipeline ────────────────────────────────────────────────────────
	trianglePipeline := pipeline.NewPipeline("triangle",
		pipeline.WithVertexShader(shader.NewShader("triangle_vert", geometry.TriangleShaderSource, shader.ShaderTypeVertex)),
		pipeline.WithFragmentShader(shader.NewShader("triangle_frag", geometry.TriangleShaderSource, shader.ShaderTypeFragment)),
		pipeline.WithVertexLayouts(geometry.Layout()),
	)
	if err := r.RegisterPipelines(trianglePipeline); err != nil {
		log.Error("pipeline registration failed", "error", err)
		r.Release()
		_ = win.Close()
		os.Exit(1)
	}

	// ── Engine + Geometry ───────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithProfiling(true),
	)

	vertices := geometry.Triangle()
	mesh, err := eng.LoadMesh("triangle", geometry.Marshal(vertices), len(vertices))
	if err != nil {
		log.Error("mesh upload failed", "error", err)
		eng.Release()
		_ = win.Close()
		os.Exit(1)
	}
	eng.AddDraw("triangle", mesh)

	log.Info("starting triangle demo", "width", win.Width(), "height", win.Height())
	if err := eng.Run(); err != nil {
		log.Error("render loop failed", "error", err)
		os.Exit(1)
	}
}
