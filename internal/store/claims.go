package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// WriteClaim upserts a claim on its (subject, predicate, object_value,
// model_version) key and atomically replaces its evidence set. The
// whole write runs in one transaction so a concurrent reader never
// sees a claim with stale or partially-replaced evidence.
//
// Evidence is deduplicated by (evidence_type, evidence_ref), keeping
// the maximum weight on collision.
func (s *SQLiteStore) WriteClaim(ctx context.Context, c *Claim, evidence []Evidence) (int64, error) {
	if c.Subject == "" || c.Predicate == "" || c.ObjectValue == "" {
		return 0, fmt.Errorf("claim requires subject, predicate, and object_value")
	}
	if c.ModelVersion == "" {
		return 0, fmt.Errorf("claim requires a model version")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO claims (subject, predicate, object_value, probability, status, notes, model_version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(subject, predicate, object_value, model_version)
		 DO UPDATE SET probability = excluded.probability,
		               status      = excluded.status,
		               notes       = excluded.notes,
		               updated_at  = excluded.updated_at`,
		c.Subject, c.Predicate, c.ObjectValue, c.Probability, c.Status, c.Notes, c.ModelVersion, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upserting claim: %w", err)
	}

	var claimID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM claims WHERE subject = ? AND predicate = ? AND object_value = ? AND model_version = ?`,
		c.Subject, c.Predicate, c.ObjectValue, c.ModelVersion,
	).Scan(&claimID)
	if err != nil {
		return 0, fmt.Errorf("resolving claim id: %w", err)
	}

	// Replace, not append: the evidence set must mirror the latest
	// score run exactly.
	if _, err := tx.ExecContext(ctx, `DELETE FROM evidence WHERE claim_id = ?`, claimID); err != nil {
		return 0, fmt.Errorf("clearing claim evidence: %w", err)
	}
	for _, e := range dedupeEvidence(evidence) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO evidence (claim_id, evidence_type, evidence_ref, weight) VALUES (?, ?, ?, ?)`,
			claimID, e.EvidenceType, e.EvidenceRef, e.Weight,
		); err != nil {
			return 0, fmt.Errorf("inserting evidence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing claim transaction: %w", err)
	}

	c.ID = claimID
	return claimID, nil
}

// dedupeEvidence collapses rows sharing (type, ref), keeping the
// maximum weight. Input order of the surviving rows is preserved.
func dedupeEvidence(evidence []Evidence) []Evidence {
	type key struct{ typ, ref string }
	index := map[key]int{}
	out := make([]Evidence, 0, len(evidence))
	for _, e := range evidence {
		k := key{e.EvidenceType, e.EvidenceRef}
		if i, ok := index[k]; ok {
			if e.Weight > out[i].Weight {
				out[i].Weight = e.Weight
			}
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}

// GetClaim retrieves a claim by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetClaim(ctx context.Context, id int64) (*Claim, error) {
	c := &Claim{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject, predicate, object_value, probability, status, notes, model_version, created_at, updated_at
		 FROM claims WHERE id = ?`, id,
	).Scan(&c.ID, &c.Subject, &c.Predicate, &c.ObjectValue, &c.Probability,
		&c.Status, &c.Notes, &c.ModelVersion, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim %d: %w", id, err)
	}
	return c, nil
}

// ListClaims returns claims matching the filter, most recently updated
// first.
func (s *SQLiteStore) ListClaims(ctx context.Context, f ClaimFilter) ([]*Claim, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}

	query := `SELECT id, subject, predicate, object_value, probability, status, notes, model_version, created_at, updated_at
	          FROM claims`
	var where []string
	var args []interface{}
	if f.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, f.Subject)
	}
	if f.Predicate != "" {
		where = append(where, "predicate = ?")
		args = append(args, f.Predicate)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.ModelVersion != "" {
		where = append(where, "model_version = ?")
		args = append(args, f.ModelVersion)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []*Claim
	for rows.Next() {
		c := &Claim{}
		if err := rows.Scan(&c.ID, &c.Subject, &c.Predicate, &c.ObjectValue, &c.Probability,
			&c.Status, &c.Notes, &c.ModelVersion, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning claim row: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// ClaimEvidence returns the evidence rows attached to a claim.
func (s *SQLiteStore) ClaimEvidence(ctx context.Context, claimID int64) ([]Evidence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, evidence_type, evidence_ref, weight FROM evidence WHERE claim_id = ? ORDER BY id`,
		claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying evidence for claim %d: %w", claimID, err)
	}
	defer rows.Close()

	var evidence []Evidence
	for rows.Next() {
		var e Evidence
		if err := rows.Scan(&e.ID, &e.ClaimID, &e.EvidenceType, &e.EvidenceRef, &e.Weight); err != nil {
			return nil, fmt.Errorf("scanning evidence row: %w", err)
		}
		evidence = append(evidence, e)
	}
	return evidence, rows.Err()
}
