// Package persistence stores the chaos save record and the event journal.
//
// The save record is a single JSON document under a fixed key in a
// key-value backend; SQLite is the durable backend and MemoryBackend the
// throwaway one. The journal is an append-only table of notable events.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/chaosmode/internal/events"
)

// ErrNotFound is returned by a Backend when the key has never been written.
var ErrNotFound = errors.New("persistence: key not found")

// DB wraps a SQLite connection holding the kv table and the event journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 0,
		item_id TEXT NOT NULL DEFAULT '',
		achievement_id TEXT NOT NULL DEFAULT '',
		value REAL NOT NULL DEFAULT 0,
		occurred_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Get returns the value stored under key, or ErrNotFound.
func (db *DB) Get(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Put stores a key-value pair, replacing any previous value.
func (db *DB) Put(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UnixMilli(),
	)
	return err
}

// JournalEntry is one row of the event journal.
type JournalEntry struct {
	Seq           int64   `db:"seq" json:"seq"`
	ID            string  `db:"id" json:"id"`
	Type          string  `db:"type" json:"type"`
	Level         uint32  `db:"level" json:"level,omitempty"`
	ItemID        string  `db:"item_id" json:"itemId,omitempty"`
	AchievementID string  `db:"achievement_id" json:"achievementId,omitempty"`
	Value         float64 `db:"value" json:"value,omitempty"`
	OccurredAt    int64   `db:"occurred_at" json:"occurredAt"`
}

// AppendEvents writes events to the journal in one transaction.
func (db *DB) AppendEvents(evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range evs {
		_, err := tx.Exec(
			`INSERT INTO events (id, type, level, item_id, achievement_id, value, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.Type), e.Level, e.ItemID, e.AchievementID, e.Value, e.Time.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N journal entries, newest first.
func (db *DB) RecentEvents(limit int) ([]JournalEntry, error) {
	var entries []JournalEntry
	err := db.conn.Select(&entries,
		`SELECT seq, id, type, level, item_id, achievement_id, value, occurred_at
		FROM events ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	return entries, err
}

// ClearEvents empties the journal.
func (db *DB) ClearEvents() error {
	_, err := db.conn.Exec("DELETE FROM events")
	return err
}
