package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    turn INTEGER NOT NULL,
    taken_at INTEGER NOT NULL,
    actors INTEGER NOT NULL,
    active INTEGER NOT NULL,
    body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
`

// SQLiteStore persists snapshots in a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	logger   *slog.Logger
	maxCount int
}

// NewSQLiteStore opens (creating if needed) the database at dsn.
func NewSQLiteStore(dsn string, maxCount int, logger *slog.Logger) (*SQLiteStore, error) {
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps in-memory databases alive across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger, maxCount: maxCount}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List() []Summary {
	rows, err := s.db.Query(`SELECT id, turn, taken_at, actors, active FROM snapshots ORDER BY taken_at DESC`)
	if err != nil {
		s.logger.Warn("failed to list snapshots", "error", err)
		return nil
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			takenAt int64
		)
		if err := rows.Scan(&sum.ID, &sum.Turn, &takenAt, &sum.Actors, &sum.Active); err != nil {
			s.logger.Warn("failed to scan snapshot row", "error", err)
			return out
		}
		sum.TakenAt = time.Unix(0, takenAt).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("failed to list snapshots", "error", err)
	}
	return out
}

func (s *SQLiteStore) Get(id string) (Snapshot, error) {
	return s.scanOne(s.db.QueryRow(`SELECT body FROM snapshots WHERE id = ?`, id), id)
}

func (s *SQLiteStore) Latest() (Snapshot, error) {
	return s.scanOne(s.db.QueryRow(`SELECT body FROM snapshots ORDER BY taken_at DESC LIMIT 1`), "latest")
}

func (s *SQLiteStore) scanOne(row *sql.Row, what string) (Snapshot, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, what)
		}
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) Save(snap Snapshot) (Summary, error) {
	if snap.TakenAt.IsZero() {
		return Summary{}, fmt.Errorf("cannot save snapshot without a time")
	}
	snap = withID(snap)
	body, err := json.Marshal(snap)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	sum := snap.Summary()

	tx, err := s.db.Begin()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO snapshots (id, turn, taken_at, actors, active, body) VALUES (?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.Turn, sum.TakenAt.UnixNano(), sum.Actors, sum.Active, string(body),
	); err != nil {
		return Summary{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY taken_at DESC LIMIT ?)`,
		s.maxCount,
	); err != nil {
		return Summary{}, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.logger.Debug("saved snapshot to sqlite", "id", sum.ID, "turn", sum.Turn)
	return sum, nil
}
