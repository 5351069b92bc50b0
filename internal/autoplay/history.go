package autoplay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	maxRecords     = 50
	summaryRecords = 5
)

// CycleRecord captures what happened in one cycle.
type CycleRecord struct {
	At        time.Time `json:"at"`
	Action    string    `json:"action"`
	Item      string    `json:"item,omitempty"`
	Level     uint32    `json:"level"`
	Clicks    float64   `json:"clicks"`
	Error     string    `json:"error,omitempty"`
	Rationale string    `json:"rationale,omitempty"`
}

// History is a ring of recent cycle records, optionally kept on disk.
type History struct {
	Path    string        `json:"-"`
	Records []CycleRecord `json:"records"`
}

// LoadHistory reads path. Returns empty history if it is missing or
// unreadable; an empty path keeps history in memory only.
func LoadHistory(path string) *History {
	h := &History{Path: path}
	if path == "" {
		return h
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}
	if err := json.Unmarshal(data, h); err != nil {
		slog.Warn("autoplay history corrupted, starting fresh", "error", err)
		return &History{Path: path}
	}
	return h
}

// Save writes the history to Path.
func (h *History) Save() {
	if h.Path == "" {
		return
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		slog.Error("failed to marshal autoplay history", "error", err)
		return
	}
	if err := os.WriteFile(h.Path, data, 0644); err != nil {
		slog.Error("failed to write autoplay history", "error", err)
	}
}

// Record adds a record, trimming to maxRecords.
func (h *History) Record(r CycleRecord) {
	h.Records = append(h.Records, r)
	if len(h.Records) > maxRecords {
		h.Records = h.Records[len(h.Records)-maxRecords:]
	}
}

// Purchases counts buy records.
func (h *History) Purchases() int {
	n := 0
	for _, r := range h.Records {
		if r.Action == ActionBuy && r.Error == "" {
			n++
		}
	}
	return n
}

// Summary describes the last few cycles for logging.
func (h *History) Summary(now time.Time) string {
	if len(h.Records) == 0 {
		return "no cycles yet"
	}
	var b strings.Builder
	start := max(0, len(h.Records)-summaryRecords)
	for i, r := range h.Records[start:] {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s", humanize.RelTime(r.At, now, "ago", "from now"), r.Action)
		if r.Item != "" {
			fmt.Fprintf(&b, " %s", r.Item)
		}
		fmt.Fprintf(&b, " (level %d, %s clicks)", r.Level, humanize.Comma(int64(r.Clicks)))
		if r.Error != "" {
			fmt.Fprintf(&b, " error=%s", r.Error)
		}
	}
	return b.String()
}
