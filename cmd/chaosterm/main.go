// Command chaosterm plays chaos mode in the terminal, with the engine
// running in-process.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/talgya/chaosmode/internal/app"
	"github.com/talgya/chaosmode/internal/audio"
	"github.com/talgya/chaosmode/internal/config"
	"github.com/talgya/chaosmode/internal/entropy"
	"github.com/talgya/chaosmode/internal/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The screen owns stdout, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Audio {
		player := audio.NewPlayer(cfg.Volume)
		if err := player.Init(); err != nil {
			slog.Warn("audio disabled", "error", err)
		} else {
			defer player.Close()
			id, stream := a.Bus.Stream(64)
			defer a.Bus.Unstream(id)
			go player.Run(ctx, stream)
		}
	}

	if err := a.Start(); err != nil {
		return fmt.Errorf("resume game: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	ui := &render.UI{
		Screen:   screen,
		Eng:      a.Engine,
		Game:     a.Game,
		Bus:      a.Bus,
		Renderer: render.New(screen, entropy.NewSeeded(cfg.Seed+1)),
	}
	slog.Info("chaosterm started", "db", cfg.DBPath, "memory", cfg.Memory, "audio", cfg.Audio)
	return ui.Run(ctx)
}
