// Command chaosmode runs the chaos engine and serves it over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/chaosmode/internal/api"
	"github.com/talgya/chaosmode/internal/app"
	"github.com/talgya/chaosmode/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Chaos Mode engine",
		"xp_growth", cfg.Tuning.XPGrowth,
		"price_growth", cfg.Tuning.PriceGrowth,
		"omega_level", cfg.Tuning.OmegaLevel,
		"income_interval", cfg.Tuning.IncomeInterval,
	)

	// ── Engine ────────────────────────────────────────────────────────
	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	if err := a.Start(); err != nil {
		slog.Error("failed to resume game", "error", err)
		os.Exit(1)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("CHAOS_ADMIN_KEY not set, reset and snapshot endpoints are disabled")
	}
	limiter := api.NewRateLimiter(cfg.ClickRate, cfg.ClickBurst)
	defer limiter.Close()

	apiServer := &api.Server{
		Game:        a.Game,
		Eng:         a.Engine,
		Bus:         a.Bus,
		DB:          a.DB,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		StreamKey:   cfg.StreamKey,
		CORSOrigins: cfg.CORSOrigins,
		Clicks:      limiter,
	}
	apiServer.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Chaos engine running... (Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case <-a.Engine.Done():
	}

	if err := apiServer.Close(); err != nil {
		slog.Warn("http close", "error", err)
	}
	if err := a.Close(); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	fmt.Println("Chaos engine stopped. Game saved.")
}
