package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/romanlevin/stockfighter/pkg/quant"
)

// ErrNoCheckpoint is returned when a run has no saved progress.
var ErrNoCheckpoint = errors.New("no checkpoint for run")

// Checkpoint is one saved slice of acquisition progress. A restarted process
// loads the latest row for its run and resumes from the recorded fill count
// and ceilings instead of buying the whole block again.
type Checkpoint struct {
	RunID          string
	SharesBought   quant.Shares
	Target         quant.Cents
	ClientsCeiling quant.Cents
	UpdatedAt      time.Time
}

// CheckpointStore persists acquisition progress in SQLite.
type CheckpointStore struct {
	db *sql.DB
}

// NewCheckpointStore opens (or creates) the checkpoint database.
func NewCheckpointStore(dbPath string) (*CheckpointStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			shares_bought INTEGER NOT NULL,
			target_cents INTEGER NOT NULL,
			clients_ceiling INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_checkpoints_run ON checkpoints(run_id, id);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoints table: %w", err)
	}

	return &CheckpointStore{db: db}, nil
}

// Save appends a checkpoint row. Rows are append-only so the database doubles
// as a progress audit trail.
func (s *CheckpointStore) Save(ctx context.Context, cp Checkpoint) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO checkpoints (run_id, shares_bought, target_cents, clients_ceiling, updated_at) VALUES (?, ?, ?, ?, ?)",
		cp.RunID, int64(cp.SharesBought), int64(cp.Target), int64(cp.ClientsCeiling),
		cp.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadLatest returns the most recent checkpoint for a run, or ErrNoCheckpoint.
func (s *CheckpointStore) LoadLatest(ctx context.Context, runID string) (Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT run_id, shares_bought, target_cents, clients_ceiling, updated_at FROM checkpoints WHERE run_id = ? ORDER BY id DESC LIMIT 1",
		runID,
	)

	var cp Checkpoint
	var bought, target, ceiling, updated int64
	if err := row.Scan(&cp.RunID, &bought, &target, &ceiling, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, ErrNoCheckpoint
		}
		return Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	cp.SharesBought = quant.Shares(bought)
	cp.Target = quant.Cents(target)
	cp.ClientsCeiling = quant.Cents(ceiling)
	cp.UpdatedAt = time.UnixMilli(updated)
	return cp, nil
}

// History returns every checkpoint for a run, oldest first.
func (s *CheckpointStore) History(ctx context.Context, runID string) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, shares_bought, target_cents, clients_ceiling, updated_at FROM checkpoints WHERE run_id = ? ORDER BY id ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var bought, target, ceiling, updated int64
		if err := rows.Scan(&cp.RunID, &bought, &target, &ceiling, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		cp.SharesBought = quant.Shares(bought)
		cp.Target = quant.Cents(target)
		cp.ClientsCeiling = quant.Cents(ceiling)
		cp.UpdatedAt = time.UnixMilli(updated)
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}
