package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/galaxy"
	"github.com/gekko3d/galaxy/rt/core"
	"github.com/gekko3d/galaxy/rt/editor"
	"github.com/gekko3d/galaxy/rt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	panelFontSize = 18
	panelMargin   = 16
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Points       *gpu.PointsPass
	Material     *gpu.Material
	Text         *gpu.TextPass
	TextRenderer *core.TextRenderer

	Galaxy   *galaxy.Galaxy
	Panel    *editor.Panel
	Camera   core.Camera
	Controls *core.OrbitControls
	Viewport core.Viewport
	Clock    *galaxy.Clock
	Profiler *Profiler
	Logger   galaxy.Logger

	// Reloads delivers parameters from the preset watcher; nil when not
	// watching.
	Reloads <-chan galaxy.GenerationParameters

	DebugMode bool

	params galaxy.GenerationParameters
	rng    galaxy.RandomSource
	input  inputState
}

func NewApp(window *glfw.Window, params galaxy.GenerationParameters, rng galaxy.RandomSource, logger galaxy.Logger) *App {
	if logger == nil {
		logger = galaxy.NewNopLogger()
	}
	return &App{
		Window:   window,
		Camera:   core.NewCamera(),
		Controls: core.NewOrbitControls(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{}),
		Panel:    editor.NewPanel(params),
		Galaxy:   galaxy.NewGalaxy(nil, rng, logger),
		Profiler: NewProfiler(),
		Logger:   logger,
		params:   params,
		rng:      rng,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	winW, winH := a.Window.GetSize()
	fbW, fbH := a.Window.GetFramebufferSize()
	a.Viewport = core.ComputeViewport(winW, winH, fbW, fbH)

	caps := a.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return fmt.Errorf("surface reports no formats")
	}
	format, srgb := SurfaceFormat(caps.Formats)
	if !srgb {
		a.Logger.Warnf("no sRGB surface format, encoding in the shader (%v)", format)
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       max(a.Viewport.SurfaceWidth, 1),
		Height:      max(a.Viewport.SurfaceHeight, 1),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.Points, err = gpu.NewPointsPass(a.Device, a.Config.Format)
	if err != nil {
		return fmt.Errorf("points pass: %w", err)
	}
	a.Material = a.Points.Material
	a.Material.SetEncodeSrgb(!srgb)
	a.Material.SetViewport(a.Config.Width, a.Config.Height)

	a.TextRenderer, err = core.NewMonoTextRenderer(panelFontSize)
	if err != nil {
		a.Logger.Warnf("text renderer disabled: %v", err)
	} else if a.Text, err = gpu.NewTextPass(a.Device, a.Config.Format, a.TextRenderer); err != nil {
		a.Logger.Warnf("text pass disabled: %v", err)
		a.Text = nil
	}

	a.Galaxy = galaxy.NewGalaxy(a.Points, a.rng, a.Logger)
	if err := a.Regenerate(a.params); err != nil {
		return err
	}

	a.Clock = galaxy.NewClock()
	a.Logger.Infof("renderer ready: %dx%d surface, pixel ratio %.2f, format %v",
		a.Config.Width, a.Config.Height, a.Viewport.PixelRatio, a.Config.Format)
	return nil
}

// SurfaceFormat prefers an sRGB format, so the linear colours the shaders
// write are encoded exactly once on store. The second result is false when
// only non-sRGB formats are offered.
func SurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, bool) {
	for _, f := range formats {
		switch f {
		case wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8UnormSrgb:
			return f, true
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, false
	}
	return formats[0], false
}

// Resize follows a framebuffer size change. The pixel ratio is re-derived
// from the window size, so moving between displays is picked up too.
func (a *App) Resize(fbW, fbH int) {
	winW, winH := a.Window.GetSize()
	vp := core.ComputeViewport(winW, winH, fbW, fbH)
	if !vp.Valid() {
		return
	}
	a.Viewport = vp
	a.Config.Width = vp.SurfaceWidth
	a.Config.Height = vp.SurfaceHeight
	a.Surface.Configure(a.Adapter, a.Device, a.Config)

	a.Material.SetViewport(vp.SurfaceWidth, vp.SurfaceHeight)
	a.Material.SetSize(a.params.Size, vp.PixelRatio)
	a.Logger.Debugf("resized to %dx%d (window %dx%d, ratio %.2f)", vp.SurfaceWidth, vp.SurfaceHeight, winW, winH, vp.PixelRatio)
}

// Regenerate rebuilds the galaxy from params, replacing the live cloud.
func (a *App) Regenerate(params galaxy.GenerationParameters) error {
	defer a.Profiler.Track("generate")()

	cloud, err := a.Galaxy.Regenerate(params)
	if err != nil {
		// The panel goes back to the last parameters that produced a galaxy.
		a.Panel.SetParams(a.params)
		return fmt.Errorf("regenerate (dropped %s): %w", params, err)
	}
	a.params = params
	if a.Material != nil {
		ratio := a.Viewport.PixelRatio
		if ratio == 0 {
			ratio = 1
		}
		a.Material.ApplyParams(params, ratio)
	}
	a.Profiler.SetCount("points", cloud.Len())
	a.Profiler.SetCount("generation", a.Galaxy.Generations())
	a.Logger.Infof("galaxy %s: %d points", cloud.ID, cloud.Len())
	return nil
}

func (a *App) Params() galaxy.GenerationParameters {
	return a.params
}

// applyReloads drains at most one pending preset reload.
func (a *App) applyReloads() {
	if a.Reloads == nil {
		return
	}
	select {
	case params, ok := <-a.Reloads:
		if !ok {
			a.Reloads = nil
			return
		}
		a.Panel.SetParams(params)
		if err := a.Regenerate(params); err != nil {
			a.Logger.Errorf("preset reload: %v", err)
		}
	default:
	}
}

func (a *App) Update() {
	defer a.Profiler.Track("update")()

	a.applyReloads()

	a.Material.SetTime(a.Clock.Tick())
	a.Controls.Update()
	a.Material.SetMatrices(a.Controls.ViewMatrix(), a.Camera.Projection(a.Viewport.Aspect()))
	a.Points.Prepare()

	if a.Text != nil {
		a.Text.Update(a.textItems(), a.Config.Width, a.Config.Height)
	}
}

func (a *App) textItems() []core.TextItem {
	scale := a.Viewport.PixelRatio
	if scale == 0 {
		scale = 1
	}
	margin := panelMargin * scale
	items := a.Panel.TextItems(a.TextRenderer, margin, margin, scale)

	if a.DebugMode {
		stats := a.Profiler.GetStatsString()
		w, _ := a.TextRenderer.MeasureText(stats, scale)
		items = append(items, core.TextItem{
			Text:     stats,
			Position: [2]float32{float32(a.Config.Width) - w - margin, margin},
			Scale:    scale,
			Color:    [4]float32{1, 1, 0, 1},
		})
	}
	return items
}

func (a *App) Render() {
	defer a.Profiler.Track("render")()

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	a.Points.Draw(pass)
	if a.Text != nil {
		a.Text.Draw(pass)
	}
	if err := pass.End(); err != nil {
		a.Logger.Errorf("render pass End failed: %v", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("encoder Finish failed: %v", err)
		return
	}
	defer cmd.Release()
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.Profiler.Frame()
}

// Release frees GPU resources in reverse creation order.
func (a *App) Release() {
	a.Galaxy.Release()
	if a.Text != nil {
		a.Text.Release()
	}
	if a.Points != nil {
		a.Points.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
