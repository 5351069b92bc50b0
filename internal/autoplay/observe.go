// Package autoplay implements the autoclicker: a client that plays the
// chaos game over the HTTP API. Each cycle observes the game, decides on
// a move and acts through the public endpoints.
package autoplay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Observation holds everything collected in one observe step.
type Observation struct {
	Status Status     `json:"status"`
	Shop   []ShopItem `json:"shop"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Clicks             float64 `json:"clicks"`
	ClicksText         string  `json:"clicksText"`
	ManualClicks       uint64  `json:"manualClicks"`
	Level              uint32  `json:"level"`
	XP                 uint64  `json:"xp"`
	XPToNextLevel      uint64  `json:"xpToNextLevel"`
	Minions            uint32  `json:"minions"`
	ClickMultiplier    float64 `json:"clickMultiplier"`
	ClicksPerSecond    float64 `json:"clicksPerSecond"`
	ChaosIntensity     int     `json:"chaosIntensity"`
	EffectiveIntensity int     `json:"effectiveIntensity"`
	Achievements       int     `json:"achievements"`
	OmegaMode          bool    `json:"omegaMode"`
	Phase              string  `json:"phase"`
	Suspended          bool    `json:"suspended"`
}

// ShopItem mirrors items from GET /api/v1/shop.
type ShopItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Owned      uint32  `json:"owned"`
	Affordable bool    `json:"affordable"`
}

// Observer fetches game state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Observe fetches status and shop.
func (o *Observer) Observe(ctx context.Context) (*Observation, error) {
	obs := &Observation{}
	if err := o.fetchJSON(ctx, "/api/v1/status", &obs.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/shop", &obs.Shop); err != nil {
		return nil, fmt.Errorf("fetch shop: %w", err)
	}
	return obs, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
