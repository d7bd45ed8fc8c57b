package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// BeginRun inserts a new run row and returns its uuid.
func (s *SQLiteStore) BeginRun(ctx context.Context, modelVersion, priorsVersion string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, model_version, priors_version, started_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		id, modelVersion, priorsVersion,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun records the final counters for a run.
func (s *SQLiteStore) FinishRun(ctx context.Context, id string, usersScored, claimsWritten, abstentions int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET users_scored = ?, claims_written = ?, abstentions = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`,
		usersScored, claimsWritten, abstentions, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// LastRun returns the most recently started run, or (nil, nil) when
// the runs table is empty.
func (s *SQLiteStore) LastRun(ctx context.Context) (*Run, error) {
	r := &Run{}
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, model_version, priors_version, users_scored, claims_written, abstentions, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`,
	).Scan(&r.ID, &r.ModelVersion, &r.PriorsVersion, &r.UsersScored, &r.ClaimsWritten, &r.Abstentions, &r.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last run: %w", err)
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return r, nil
}
