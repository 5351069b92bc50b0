// Package api serves the chaos game over HTTP.
// GET endpoints are read-only views. POST endpoints are player commands,
// except reset and snapshot which require the admin bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/engine"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/persistence"
)

const maxSSEConns = 8

// Runner serializes work onto the engine goroutine.
type Runner interface {
	Do(fn func()) error
}

// Server serves the game over HTTP.
type Server struct {
	Game        *engine.Game
	Eng         Runner
	Bus         *events.Bus
	DB          *persistence.DB // Journal source; nil disables /events
	Port        int
	AdminKey    string // Bearer token for reset/snapshot. Empty = disabled.
	StreamKey   string // Bearer token for the SSE stream. Empty = open.
	CORSOrigins []string
	Clicks      *RateLimiter // Per-IP click limiter; nil = unlimited

	// Active SSE connection count (atomic).
	sseConns int32

	srv *http.Server
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", only(http.MethodGet, s.handleStatus))
	mux.HandleFunc("/api/v1/shop", only(http.MethodGet, s.handleShop))
	mux.HandleFunc("/api/v1/achievements", only(http.MethodGet, s.handleAchievements))
	mux.HandleFunc("/api/v1/effects", only(http.MethodGet, s.handleEffects))
	mux.HandleFunc("/api/v1/events", only(http.MethodGet, s.handleEvents))
	mux.HandleFunc("/api/v1/stream", only(http.MethodGet, s.handleStream))

	click := s.handleClick
	if s.Clicks != nil {
		click = RateLimitMiddleware(s.Clicks, click)
	}
	mux.HandleFunc("/api/v1/click", only(http.MethodPost, click))
	mux.HandleFunc("/api/v1/buy", only(http.MethodPost, s.handleBuy))
	mux.HandleFunc("/api/v1/settings", only(http.MethodPost, s.handleSettings))
	mux.HandleFunc("/api/v1/toggle", only(http.MethodPost, s.handleToggle))
	mux.HandleFunc("/api/v1/menu", only(http.MethodPost, s.handleMenu))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/reset", only(http.MethodPost, s.adminOnly(s.handleReset)))
	mux.HandleFunc("/api/v1/snapshot", only(http.MethodPost, s.adminOnly(s.handleSnapshot)))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "stream_auth", s.StreamKey != "")

	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Close stops accepting requests and drops open connections.
func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func bearer(r *http.Request, key string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == key
}

// adminOnly wraps a handler to require the admin bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no CHAOS_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !bearer(r, s.AdminKey) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// run executes fn on the engine goroutine, answering 503 if it has stopped.
func (s *Server) run(w http.ResponseWriter, fn func()) bool {
	if err := s.Eng.Do(fn); err != nil {
		http.Error(w, "engine stopped", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// statusOf maps game errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrUnknownItem), errors.Is(err, game.ErrUnknownSetting):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, effects.ErrEffectLocked):
		return http.StatusConflict
	case errors.Is(err, effects.ErrSuspended):
		return http.StatusLocked
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusOf(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// Status is the compact view returned by status and every command.
type Status struct {
	Clicks             float64       `json:"clicks"`
	ClicksText         string        `json:"clicksText"`
	ManualClicks       uint64        `json:"manualClicks"`
	Level              uint32        `json:"level"`
	LevelText          string        `json:"levelText"`
	XP                 uint64        `json:"xp"`
	XPToNextLevel      uint64        `json:"xpToNextLevel"`
	Minions            uint32        `json:"minions"`
	ClickMultiplier    float64       `json:"clickMultiplier"`
	ClicksPerSecond    float64       `json:"clicksPerSecond"`
	ChaosIntensity     int           `json:"chaosIntensity"`
	EffectiveIntensity int           `json:"effectiveIntensity"`
	Achievements       int           `json:"achievements"`
	OmegaMode          bool          `json:"omegaMode"`
	Phase              effects.Phase `json:"phase"`
	Suspended          bool          `json:"suspended"`
	Visible            bool          `json:"visible"`
	Started            string        `json:"started"`
}

func statusFrom(snap engine.Snapshot) Status {
	st := snap.State
	return Status{
		Clicks:             st.Clicks,
		ClicksText:         snap.ClicksText,
		ManualClicks:       st.ManualClicks,
		Level:              st.Level,
		LevelText:          snap.LevelText,
		XP:                 st.XP,
		XPToNextLevel:      st.XPToNextLevel,
		Minions:            st.Minions,
		ClickMultiplier:    st.ClickMultiplier,
		ClicksPerSecond:    snap.ClicksPerSecond,
		ChaosIntensity:     st.Settings.ChaosIntensity,
		EffectiveIntensity: snap.EffectiveIntensity,
		Achievements:       len(st.UnlockedAchievements),
		OmegaMode:          st.OmegaMode,
		Phase:              snap.Phase,
		Suspended:          snap.Suspended,
		Visible:            snap.Visible,
		Started:            snap.ElapsedText,
	}
}

func (s *Server) snapshot(w http.ResponseWriter) (engine.Snapshot, bool) {
	var snap engine.Snapshot
	ok := s.run(w, func() { snap = s.Game.Snapshot() })
	return snap, ok
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, statusFrom(snap))
	}
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, snap.Shop)
	}
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, snap.Achievements)
	}
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	locked := []game.SettingName{}
	for _, name := range game.FlagNames {
		if effects.CanEnable(name, true, snap.State.Level) != nil {
			locked = append(locked, name)
		}
	}
	writeJSON(w, map[string]any{
		"active":   snap.ActiveEffects,
		"tiers":    snap.Tiers,
		"locked":   locked,
		"settings": snap.State.Settings,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal not available", http.StatusServiceUnavailable)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	entries, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("journal query failed", "error", err)
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []persistence.JournalEntry{}
	}
	writeJSON(w, entries)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var (
		err  error
		snap engine.Snapshot
	)
	if !s.run(w, func() {
		err = s.Game.Click()
		snap = s.Game.Snapshot()
	}) {
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, statusFrom(snap))
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id, err := game.ParseItemID(req.Item)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		purchase engine.Purchase
		snap     engine.Snapshot
	)
	if !s.run(w, func() {
		purchase, err = s.Game.Buy(id)
		snap = s.Game.Snapshot()
	}) {
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"purchase": purchase,
		"status":   statusFrom(snap),
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	name, err := game.ParseSettingName(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	var apply func() error
	if name == game.SettingChaosIntensity {
		var v int
		if err := json.Unmarshal(req.Value, &v); err != nil {
			writeError(w, fmt.Errorf("%w: chaosIntensity wants an integer", game.ErrInvalidValue))
			return
		}
		apply = func() error { return s.Game.SetIntensity(v) }
	} else {
		var on bool
		if err := json.Unmarshal(req.Value, &on); err != nil {
			writeError(w, fmt.Errorf("%w: %s wants a boolean", game.ErrInvalidValue, name))
			return
		}
		apply = func() error { return s.Game.SetFlag(name, on) }
	}

	var settings game.Settings
	if !s.run(w, func() {
		err = apply()
		settings = s.Game.State().Settings
	}) {
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, settings)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var (
		visible bool
		err     error
	)
	if !s.run(w, func() { visible, err = s.Game.ToggleVisibility() }) {
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"visible": visible})
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil || req.Y == nil {
		http.Error(w, "want {\"x\": number, \"y\": number}", http.StatusBadRequest)
		return
	}
	if s.run(w, func() { s.Game.SetMenuPosition(*req.X, *req.Y) }) {
		writeJSON(w, map[string]float64{"x": *req.X, "y": *req.Y})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Confirm {
		http.Error(w, "reset requires {\"confirm\": true}", http.StatusBadRequest)
		return
	}
	var snap engine.Snapshot
	if !s.run(w, func() {
		s.Game.Reset()
		snap = s.Game.Snapshot()
	}) {
		return
	}
	slog.Warn("game reset via API", "remote", r.RemoteAddr)
	writeJSON(w, statusFrom(snap))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var err error
	if !s.run(w, func() { err = s.Game.Save() }) {
		return
	}
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"message": "snapshot saved"})
}

// handleStream provides an SSE endpoint for real-time events.
// Limits concurrent connections.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.StreamKey != "" && !bearer(r, s.StreamKey) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Connection limit.
	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe before the snapshot so nothing emitted in between is lost.
	subID, ch := s.Bus.Stream(64)
	defer s.Bus.Unstream(subID)

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	// SSE headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Catch-up: the current status and active effect set.
	writeSSE(w, "status", statusFrom(snap))
	writeSSE(w, string(events.EffectsChanged), map[string]any{"effects": snap.ActiveEffects})
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	// Stream loop with heartbeat.
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, string(e.Type), e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSE writes a single event in SSE format.
func writeSSE(w http.ResponseWriter, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
