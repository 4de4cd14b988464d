package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/console"
	"github.com/Versifine/stride/internal/driver"
	"github.com/Versifine/stride/internal/keybind"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/scene"
)

func main() {
	rt, rtErr := config.LoadRuntime()
	logger.Init(logger.Config{
		Level:  rt.LogLevel,
		Format: rt.LogFormat,
		Output: os.Stderr,
		File:   rt.LogFile,
	})
	defer logger.Close()
	if rtErr != nil {
		slog.Warn("Invalid runtime environment, using defaults", "error", rtErr)
	}

	cfg, err := config.LoadOrDefault(rt.ConfigPath)
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "path", rt.ConfigPath, "error", err)
	} else {
		slog.Info("Config loaded", "path", rt.ConfigPath, "network.host", cfg.Network.Host, "network.port", cfg.Network.Port)
	}

	bindings, err := keybind.Build(cfg)
	if err != nil {
		slog.Warn("Keybinds unusable, movement disabled", "error", err)
		bindings = keybind.Empty()
	}

	world := scene.NewDefaultWorld()
	rig := camera.NewRig(camera.DefaultState())
	d := driver.New(bindings, world, rig, rt.TickRate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		source driver.InputSource = driver.NoInput{}
		sink   driver.FrameSink
	)
	if !rt.Headless {
		con := console.NewConsole(os.Stdin, os.Stdout, stop)
		defer con.Close()
		source, sink = con, con
		go func() {
			if err := con.Start(ctx); err != nil {
				slog.Error("Console stopped", "error", err)
			}
			stop()
		}()
	}

	if err := d.Run(ctx, source, sink); err != nil {
		slog.Error("Tick loop failed", "error", err)
		os.Exit(1)
	}
}
