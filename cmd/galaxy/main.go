package main

import (
	"context"
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/galaxy"
	"github.com/gekko3d/galaxy/config"
	"github.com/gekko3d/galaxy/rt/app"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	preset := flag.String("preset", "", "Preset file (.toml, .yaml) with generation parameters; reloaded on change")
	envFile := flag.String("env", "", "dotenv file with GALAXY_* overrides (default: .env if present)")
	seed := flag.Int64("seed", 0, "Seed for reproducible galaxies")
	width := flag.Int("width", 0, "Window width")
	height := flag.Int("height", 0, "Window height")
	debug := flag.Bool("debug", false, "Debug logging and on-screen stats")
	watch := flag.Bool("watch", true, "Reload the preset file when it changes")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}

	logger := galaxy.NewDefaultLogger("galaxy", false)
	cfg, err := config.Load(*preset, envFiles...)
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	// Explicit flags win over the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed, cfg.Seeded = *seed, true
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "debug":
			cfg.Debug = *debug
		}
	})
	logger.SetDebug(cfg.Debug)

	var rng galaxy.RandomSource
	if cfg.Seeded {
		rng = galaxy.NewSeededSource(cfg.Seed)
		logger.Infof("seed %d", cfg.Seed)
	}

	if err := glfw.Init(); err != nil {
		logger.Errorf("glfw init: %v", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		logger.Errorf("create window: %v", err)
		os.Exit(1)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg.Params, rng, logger)
	application.DebugMode = cfg.Debug
	if err := application.Init(); err != nil {
		logger.Errorf("init: %v", err)
		os.Exit(1)
	}
	defer application.Release()
	application.InstallCallbacks()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.PresetPath != "" && *watch {
		env, err := config.LoadEnv(envFiles...)
		if err == nil {
			application.Reloads, err = config.Watch(ctx, cfg.PresetPath, env, logger)
		}
		if err != nil {
			logger.Warnf("preset watching disabled: %v", err)
		}
	}

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
