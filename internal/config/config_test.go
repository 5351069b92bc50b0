package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chaosmode/internal/tuning"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/chaosmode.db", cfg.DBPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 40.0, cfg.ClickRate)
	assert.True(t, cfg.Audio)
	assert.Equal(t, 0.3, cfg.Volume)
	assert.Equal(t, tuning.Default(), cfg.Tuning)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHAOS_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CHAOS_XP_GROWTH", "2")
	t.Setenv("CHAOS_CUTSCENE_DURATION", "3s")
	t.Setenv("CHAOS_OMEGA_LEVEL", "20")
	t.Setenv("CHAOS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2.0, cfg.Tuning.XPGrowth)
	assert.Equal(t, 3*time.Second, cfg.Tuning.CutsceneDuration)
	assert.Equal(t, uint32(20), cfg.Tuning.OmegaLevel)
	assert.Equal(t, tuning.Default().PriceGrowth, cfg.Tuning.PriceGrowth)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CHAOS_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadRejectsBrokenTuning(t *testing.T) {
	t.Setenv("CHAOS_XP_GROWTH", "0.5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xp growth")
}

func TestLoadRejectsLoudVolume(t *testing.T) {
	t.Setenv("CHAOS_VOLUME", "1.5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
}

func TestLoadAutoplay(t *testing.T) {
	t.Setenv("CHAOS_API_URL", "http://chaos.local:8080/")
	t.Setenv("CHAOS_LOG_LEVEL", "warn")
	cfg, err := LoadAutoplay()
	require.NoError(t, err)
	assert.Equal(t, "http://chaos.local:8080", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, 5*time.Minute, cfg.WaitFor)
	assert.Equal(t, "autoclicker_history.json", cfg.History)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadAutoplayRejectsZeroInterval(t *testing.T) {
	t.Setenv("AUTOCLICK_INTERVAL", "0s")
	_, err := LoadAutoplay()
	require.Error(t, err)
}
