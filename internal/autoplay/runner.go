package autoplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Bot runs observe → decide → act cycles.
type Bot struct {
	Observer *Observer
	Actor    *Actor
	History  *History
	Reserve  float64
	Interval time.Duration
	Now      func() time.Time
}

// NewBot creates a bot against baseURL.
func NewBot(baseURL string, interval time.Duration, reserve float64, history *History) *Bot {
	if history == nil {
		history = &History{}
	}
	return &Bot{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL),
		History:  history,
		Reserve:  reserve,
		Interval: interval,
		Now:      time.Now,
	}
}

// RunCycle executes one cycle and records it. A rate-limit error is
// returned so the caller can back off.
func (b *Bot) RunCycle(ctx context.Context) (CycleRecord, error) {
	obs, err := b.Observer.Observe(ctx)
	if err != nil {
		return CycleRecord{}, fmt.Errorf("observe: %w", err)
	}
	health := Triage(obs, b.Reserve)
	decision := Decide(obs, health)

	rec := CycleRecord{
		At:        b.Now(),
		Action:    decision.Action,
		Item:      decision.Item,
		Level:     obs.Status.Level,
		Clicks:    obs.Status.Clicks,
		Rationale: decision.Rationale,
	}

	var st *Status
	switch decision.Action {
	case ActionClick:
		st, err = b.Actor.Click(ctx)
	case ActionBuy:
		st, err = b.Actor.Buy(ctx, decision.Item)
	}
	if st != nil {
		rec.Level, rec.Clicks = st.Level, st.Clicks
		if st.Level > obs.Status.Level {
			slog.Info("level up", "level", st.Level, "clicks", st.ClicksText)
		}
	}
	if err != nil {
		rec.Error = err.Error()
	}
	b.History.Record(rec)

	switch {
	case err == nil:
		slog.Debug("cycle complete", "action", rec.Action, "item", rec.Item, "level", rec.Level)
	case errors.Is(err, ErrRejected), errors.Is(err, ErrSuspended):
		// The state moved between observe and act; the next cycle re-reads it.
		slog.Info("move refused", "action", rec.Action, "error", err)
		err = nil
	}
	return rec, err
}

// Run cycles every Interval until ctx ends or cycles (when > 0) have run.
func (b *Bot) Run(ctx context.Context, cycles int) error {
	defer b.History.Save()

	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for n := 0; cycles <= 0 || n < cycles; n++ {
		_, err := b.RunCycle(ctx)
		var rl *RateLimitError
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.As(err, &rl):
			slog.Warn("rate limited, backing off", "retry_after", rl.RetryAfter)
			if !sleep(ctx, rl.RetryAfter) {
				return nil
			}
		default:
			slog.Error("cycle failed", "error", err)
		}

		if n > 0 && n%100 == 0 {
			slog.Info("autoplay progress", "cycles", n, "purchases", b.History.Purchases(),
				"recent", b.History.Summary(b.Now()))
			b.History.Save()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// WaitForAPI polls the status endpoint with exponential backoff until it
// responds or timeout passes.
func WaitForAPI(ctx context.Context, apiURL string, timeout time.Duration) error {
	backoff := 500 * time.Millisecond
	maxBackoff := 15 * time.Second
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 5 * time.Second}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/status", nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("chaos API is ready")
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("chaos API at %s not ready after %s", apiURL, timeout)
		}
		slog.Info("chaos API not ready, retrying...", "backoff", backoff)
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// sleep waits for d. Returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
