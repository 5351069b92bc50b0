package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
)

// SaveKey is the single key the save record lives under.
const SaveKey = "chaosModeSaveData"

// Backend is a string key-value store.
type Backend interface {
	Get(key string) (string, error) // ErrNotFound when absent
	Put(key, value string) error
}

// Store loads, saves and resets the game state against a Backend.
// Failures are logged and reported, never fatal.
type Store struct {
	backend Backend
	bus     *events.Bus
	now     func() time.Time
}

// NewStore creates a store. bus may be nil.
func NewStore(backend Backend, bus *events.Bus) *Store {
	return &Store{backend: backend, bus: bus, now: time.Now}
}

// WithClock overrides the clock used for fresh defaults.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Load hydrates the persisted record, or returns defaults when there is
// none or it cannot be trusted.
func (s *Store) Load() *game.State {
	raw, err := s.backend.Get(SaveKey)
	if errors.Is(err, ErrNotFound) {
		slog.Info("no saved game, starting fresh")
		return game.Default(s.now())
	}
	if err != nil {
		slog.Warn("load failed, starting fresh", "error", err)
		return game.Default(s.now())
	}

	st, err := Decode([]byte(raw), s.now())
	if err != nil {
		slog.Warn("discarding saved game", "error", err)
		return game.Default(s.now())
	}

	slog.Info("game loaded", "level", st.Level, "clicks", st.DisplayClicks(), "omega", st.OmegaMode)
	return st
}

// Decode merges a persisted record over a fresh default state and
// validates the result. Missing fields keep their defaults.
func Decode(data []byte, now time.Time) (*game.State, error) {
	st := game.Default(now)
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("decode save: %w", errors.Join(game.ErrMalformed, err))
	}
	if st.UnlockedAchievements == nil {
		st.UnlockedAchievements = game.AchievementSet{}
	}
	st.Minions = st.ShopItems.Minion.Owned
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// Encode serializes the state as the persisted record.
func Encode(st *game.State) ([]byte, error) {
	return json.Marshal(st)
}

// Save writes the full state. On failure the error is logged, a
// notification is emitted and the error returned; in-memory state is
// untouched either way.
func (s *Store) Save(st *game.State) error {
	data, err := Encode(st)
	if err == nil {
		err = s.backend.Put(SaveKey, string(data))
	}
	if err != nil {
		slog.Error("save failed", "error", err)
		if s.bus != nil {
			e := events.New(events.Notification)
			e.Notice = &events.Notice{
				Title:   "Save failed",
				Message: "Error saving game!",
				Icon:    "⚠️",
				Kind:    events.NoticeError,
			}
			s.bus.Emit(e)
		}
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Reset writes a fresh default record and returns it.
func (s *Store) Reset() *game.State {
	st := game.Default(s.now())
	if err := s.Save(st); err != nil {
		slog.Warn("reset not persisted", "error", err)
	}
	return st
}
