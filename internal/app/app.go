// Package app assembles a running chaos engine from configuration. Both
// the HTTP server and the terminal client start the same App.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/talgya/chaosmode/internal/achievements"
	"github.com/talgya/chaosmode/internal/config"
	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/engine"
	"github.com/talgya/chaosmode/internal/entropy"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/persistence"
)

// tickKey stores the engine tick so ambient cadence survives restarts.
const tickKey = "engineTick"

// App owns every long-lived component of one chaos session.
type App struct {
	Config       config.Config
	Bus          *events.Bus
	DB           *persistence.DB // nil when running in memory
	Backend      persistence.Backend
	Store        *persistence.Store
	Journal      *persistence.Journal // nil when running in memory
	Engine       *engine.Engine
	Game         *engine.Game
	Orchestrator *effects.Orchestrator
	Registry     *achievements.Registry

	started bool
}

// New loads the save and wires the engine. Call Start to run it.
func New(cfg config.Config) (*App, error) {
	a := &App{Config: cfg, Bus: events.NewBus()}

	if cfg.Memory {
		a.Backend = persistence.NewMemoryBackend()
		slog.Info("running without persistence")
	} else {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err := persistence.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("database opened", "path", cfg.DBPath)
		a.DB = db
		a.Backend = db
		a.Journal = persistence.NewJournal(db, a.Bus)
	}

	a.Store = persistence.NewStore(a.Backend, a.Bus)
	st := a.Store.Load()

	params := cfg.Tuning
	a.Engine = engine.NewEngine()
	a.Engine.Interval = params.IncomeInterval
	a.Engine.AmbientEvery = params.AmbientEvery
	a.Engine.AutosaveEvery = params.AutosaveEvery
	a.Engine.Tick = a.loadTick()

	a.Registry = achievements.DefaultRegistry()
	a.Game = engine.NewGame(st, engine.Deps{
		Progression: engine.NewProgression(params, a.Bus),
		Evaluator:   achievements.NewEvaluator(a.Registry, a.Bus),
		Store:       a.Store,
		Scheduler:   a.Engine,
		Bus:         a.Bus,
		Journal:     a.Journal,
	})

	rng := entropy.New(cfg.RandomOrgKey, cfg.Seed)
	a.Orchestrator = effects.NewOrchestrator(params, a.Bus, a.Registry, rng,
		effects.NewWeather(int64(cfg.Seed)), a.Game.State)
	a.Game.AttachOrchestrator(a.Orchestrator)

	a.Engine.OnTick = func(uint64) { a.Game.PassiveTick() }
	a.Engine.OnAmbient = a.Game.AmbientTick
	a.Engine.OnAutosave = func(tick uint64) {
		a.Game.Autosave()
		a.saveTick(tick)
	}
	a.Engine.OnStop = func() {
		_ = a.Game.Save()
		a.saveTick(a.Engine.Tick)
	}
	return a, nil
}

// Start runs the engine loop and resumes the loaded game on it.
func (a *App) Start() error {
	a.started = true
	go a.Engine.Run()
	return a.Engine.Do(a.Game.Resume)
}

// Close stops the engine, waits for the final save and releases storage.
func (a *App) Close() error {
	a.Engine.Stop()
	if a.started {
		<-a.Engine.Done()
	}
	a.Bus.Close()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func (a *App) loadTick() uint64 {
	v, err := a.Backend.Get(tickKey)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			slog.Warn("engine tick unreadable", "error", err)
		}
		return 0
	}
	t, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return t
}

func (a *App) saveTick(tick uint64) {
	if err := a.Backend.Put(tickKey, strconv.FormatUint(tick, 10)); err != nil {
		slog.Warn("engine tick not saved", "error", err)
	}
}
