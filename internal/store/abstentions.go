package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// WriteAbstention appends an abstention record. Abstentions are
// append-only: each scoring run that gates a dimension leaves its own
// trace.
func (s *SQLiteStore) WriteAbstention(ctx context.Context, a *Abstention) (int64, error) {
	if a.Subject == "" || a.Predicate == "" || a.ReasonCode == "" {
		return 0, fmt.Errorf("abstention requires subject, predicate, and reason_code")
	}
	if a.ModelVersion == "" {
		return 0, fmt.Errorf("abstention requires a model version")
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO abstentions (subject, predicate, reason_code, details, model_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.Subject, a.Predicate, a.ReasonCode, a.Details, a.ModelVersion, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting abstention: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	a.ID = id
	a.CreatedAt = now
	return id, nil
}

// ListAbstentions returns abstentions, newest first, optionally
// filtered by subject.
func (s *SQLiteStore) ListAbstentions(ctx context.Context, subject string, limit int) ([]*Abstention, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, subject, predicate, reason_code, details, model_version, created_at FROM abstentions`
	var where []string
	var args []interface{}
	if subject != "" {
		where = append(where, "subject = ?")
		args = append(args, subject)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing abstentions: %w", err)
	}
	defer rows.Close()

	var out []*Abstention
	for rows.Next() {
		a := &Abstention{}
		if err := rows.Scan(&a.ID, &a.Subject, &a.Predicate, &a.ReasonCode, &a.Details, &a.ModelVersion, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning abstention row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
