package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one finalized pipeline run.
type Run struct {
	ID         string
	SessionID  string
	AudioPath  string
	Mode       string
	FrameCount int
	Duration   float64
	Outputs    []string
	CreatedAt  time.Time
}

// Store is the SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	audio_path  TEXT NOT NULL,
	mode        TEXT NOT NULL,
	frame_count INTEGER NOT NULL,
	duration    REAL NOT NULL,
	outputs     TEXT NOT NULL,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record appends a run, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	outs, err := json.Marshal(r.Outputs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, session_id, audio_path, mode, frame_count, duration, outputs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.AudioPath, r.Mode, r.FrameCount, r.Duration, string(outs), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, audio_path, mode, frame_count, duration, outputs, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r    Run
			outs string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.AudioPath, &r.Mode, &r.FrameCount, &r.Duration, &outs, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(outs), &r.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs of run %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
