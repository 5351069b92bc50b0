package autoplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Errors the actor distinguishes from plain transport failures.
var (
	ErrRejected    = errors.New("purchase rejected")
	ErrSuspended   = errors.New("game suspended")
	ErrRateLimited = errors.New("rate limited")
)

// RateLimitError carries the server's Retry-After hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// Actor performs moves via the public API.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Click sends POST /api/v1/click and returns the new status.
func (a *Actor) Click(ctx context.Context) (*Status, error) {
	var st Status
	if err := a.post(ctx, "/api/v1/click", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Buy sends POST /api/v1/buy for item and returns the new status.
func (a *Actor) Buy(ctx context.Context, item string) (*Status, error) {
	var resp struct {
		Status Status `json:"status"`
	}
	if err := a.post(ctx, "/api/v1/buy", map[string]string{"item": item}, &resp); err != nil {
		return nil, err
	}
	return &resp.Status, nil
}

func (a *Actor) post(ctx context.Context, path string, payload, target any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusPaymentRequired:
		return fmt.Errorf("POST %s: %w", path, ErrRejected)
	case http.StatusLocked:
		return fmt.Errorf("POST %s: %w", path, ErrSuspended)
	case http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RateLimitError{RetryAfter: time.Duration(max(secs, 1)) * time.Second}
	default:
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
