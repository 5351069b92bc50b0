// Command autoclicker plays a running chaos engine through its HTTP API.
// It observes the game, decides between clicking and buying, and acts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/chaosmode/internal/autoplay"
	"github.com/talgya/chaosmode/internal/config"
)

func main() {
	cfg, err := config.LoadAutoplay()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Chaos autoclicker starting",
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
		"cycles", cfg.Cycles,
		"reserve", cfg.Reserve,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The engine may still be starting; wait for HTTP readiness.
	slog.Info("waiting for chaos API...")
	if err := autoplay.WaitForAPI(ctx, cfg.APIURL, cfg.WaitFor); err != nil {
		slog.Error("chaos API unavailable", "error", err)
		os.Exit(1)
	}

	bot := autoplay.NewBot(cfg.APIURL, cfg.Interval, cfg.Reserve, autoplay.LoadHistory(cfg.History))
	if err := bot.Run(ctx, cfg.Cycles); err != nil {
		slog.Error("autoclicker failed", "error", err)
		os.Exit(1)
	}
	slog.Info("autoclicker stopped", "purchases", bot.History.Purchases())
	fmt.Println("Autoclicker stopped.")
}
