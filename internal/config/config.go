// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/chaosmode/internal/tuning"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Config is the engine process configuration shared by chaosmode and chaosterm.
type Config struct {
	DBPath       string   `env:"CHAOS_DB_PATH"       envDefault:"data/chaosmode.db"`
	Memory       bool     `env:"CHAOS_MEMORY"`
	Port         int      `env:"CHAOS_PORT"          envDefault:"8080"`
	AdminKey     string   `env:"CHAOS_ADMIN_KEY"`
	StreamKey    string   `env:"CHAOS_STREAM_KEY"`
	CORSOrigins  []string `env:"CORS_ORIGINS"        envSeparator:","`
	Seed         uint64   `env:"CHAOS_SEED"`
	RandomOrgKey string   `env:"RANDOM_ORG_API_KEY"`
	ClickRate    float64  `env:"CHAOS_CLICK_RATE"    envDefault:"40"`
	ClickBurst   int      `env:"CHAOS_CLICK_BURST"   envDefault:"80"`
	LogLevel     string   `env:"CHAOS_LOG_LEVEL"     envDefault:"info"`
	LogFile      string   `env:"CHAOS_LOG_FILE"      envDefault:"chaosterm.log"`
	Audio        bool     `env:"CHAOS_AUDIO"         envDefault:"true"`
	Volume       float64  `env:"CHAOS_VOLUME"        envDefault:"0.3"`

	Tuning tuning.Params
}

// Load reads Config from the environment over the default tuning.
func Load() (Config, error) {
	cfg := Config{Tuning: tuning.Default()}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.ClickRate <= 0 || c.ClickBurst <= 0 {
		return errors.New("config: click rate and burst must be positive")
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("config: volume %.2f outside [0, 1]", c.Volume)
	}
	if !c.Memory && strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: CHAOS_DB_PATH is empty and CHAOS_MEMORY is off")
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Autoplay configures the autoclicker.
type Autoplay struct {
	APIURL   string        `env:"CHAOS_API_URL"       envDefault:"http://localhost:8080"`
	Interval time.Duration `env:"AUTOCLICK_INTERVAL"  envDefault:"250ms"`
	Cycles   int           `env:"AUTOCLICK_CYCLES"`
	Reserve  float64       `env:"AUTOCLICK_RESERVE"   envDefault:"0"`
	History  string        `env:"AUTOCLICK_HISTORY"   envDefault:"autoclicker_history.json"`
	WaitFor  time.Duration `env:"AUTOCLICK_WAIT"      envDefault:"5m"`
	LogLevel string        `env:"CHAOS_LOG_LEVEL"     envDefault:"info"`
}

// LoadAutoplay reads the autoclicker configuration.
func LoadAutoplay() (Autoplay, error) {
	var cfg Autoplay
	if err := ParseEnv(&cfg); err != nil {
		return Autoplay{}, err
	}
	if cfg.Interval <= 0 {
		return Autoplay{}, errors.New("config: AUTOCLICK_INTERVAL must be positive")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (a Autoplay) SlogLevel() slog.Level {
	return Config{LogLevel: a.LogLevel}.SlogLevel()
}
