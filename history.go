package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// HistoryEntry is one recently edited card.
type HistoryEntry struct {
	ID        string
	Path      string
	Card      Card
	Start     float64
	End       float64
	UpdatedAt time.Time
}

// History stores recently edited cards in SQLite.
type History struct {
	db *sql.DB
}

// historyTimeFormat is fixed width so updated_at sorts as text.
const historyTimeFormat = "2006-01-02T15:04:05.000000000Z"

const historySchema = `
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL,
    caption TEXT NOT NULL,
    style TEXT NOT NULL,
    color TEXT NOT NULL,
    rotate INTEGER NOT NULL,
    start_seconds REAL NOT NULL,
    end_seconds REAL NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_updated_at ON cards(updated_at);
`

// OpenHistory opens or creates the history database at path.
func OpenHistory(ctx context.Context, path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 5000", historySchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to prepare history: %w", err)
		}
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record upserts the card for mediaPath and returns its id.
func (h *History) Record(ctx context.Context, mediaPath string, card Card, w MediaWindow) (string, error) {
	abs, err := filepath.Abs(mediaPath)
	if err != nil {
		abs = mediaPath
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(historyTimeFormat)

	row := h.db.QueryRowContext(ctx, `
        INSERT INTO cards (id, path, username, caption, style, color, rotate, start_seconds, end_seconds, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            username = excluded.username,
            caption = excluded.caption,
            style = excluded.style,
            color = excluded.color,
            rotate = excluded.rotate,
            start_seconds = excluded.start_seconds,
            end_seconds = excluded.end_seconds,
            updated_at = excluded.updated_at
        RETURNING id`,
		id, abs, card.Username, card.Caption, card.Style, card.Color, card.Rotate, w.Start, w.End, now,
	)
	var stored string
	if err := row.Scan(&stored); err != nil {
		return "", fmt.Errorf("failed to record card: %w", err)
	}
	return stored, nil
}

// Recent returns up to limit entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
        SELECT id, path, username, caption, style, color, rotate, start_seconds, end_seconds, updated_at
        FROM cards ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var updated string
		if err := rows.Scan(&e.ID, &e.Path, &e.Card.Username, &e.Card.Caption, &e.Card.Style, &e.Card.Color, &e.Card.Rotate, &e.Start, &e.End, &updated); err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		e.UpdatedAt, err = time.Parse(historyTimeFormat, updated)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history time for %s: %w", e.Path, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
