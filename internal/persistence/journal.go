package persistence

import (
	"log/slog"

	"github.com/talgya/chaosmode/internal/events"
)

// Journal buffers notable bus events and flushes them to the events
// table. Flush runs on the engine goroutine with the autosave.
type Journal struct {
	db      *DB
	pending []events.Event
}

// NewJournal subscribes a journal to bus.
func NewJournal(db *DB, bus *events.Bus) *Journal {
	j := &Journal{db: db}
	bus.Subscribe(j.record)
	return j
}

func (j *Journal) record(e events.Event) {
	if e.Notable() {
		j.pending = append(j.pending, e)
	}
}

// Pending returns how many events await a flush.
func (j *Journal) Pending() int {
	return len(j.pending)
}

// Clear drops buffered events and empties the events table.
func (j *Journal) Clear() error {
	j.pending = j.pending[:0]
	if err := j.db.ClearEvents(); err != nil {
		slog.Error("journal clear failed", "error", err)
		return err
	}
	return nil
}

// Flush writes buffered events. On error they stay buffered for the next try.
func (j *Journal) Flush() error {
	if len(j.pending) == 0 {
		return nil
	}
	if err := j.db.AppendEvents(j.pending); err != nil {
		slog.Error("journal flush failed", "pending", len(j.pending), "error", err)
		return err
	}
	j.pending = j.pending[:0]
	return nil
}
