package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds aggregate storage statistics for observability.
type Stats struct {
	TotalClaims        int            `json:"claims"`
	TotalEvidence      int            `json:"evidence"`
	TotalAbstentions   int            `json:"abstentions"`
	TotalSubjects      int            `json:"subjects"`
	ClaimsByPredicate  map[string]int `json:"claims_by_predicate"`
	ClaimsByStatus     map[string]int `json:"claims_by_status"`
	AbstentionsByCode  map[string]int `json:"abstentions_by_reason"`
	ModelVersions      []string       `json:"model_versions"`
	StorageBytes       int64          `json:"storage_bytes"`
	LastRun            *Run           `json:"last_run,omitempty"`
}

// Stats computes aggregate counts across claims, evidence, and
// abstentions.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		ClaimsByPredicate: map[string]int{},
		ClaimsByStatus:    map[string]int{},
		AbstentionsByCode: map[string]int{},
	}

	scalars := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM claims", &st.TotalClaims},
		{"SELECT COUNT(*) FROM evidence", &st.TotalEvidence},
		{"SELECT COUNT(*) FROM abstentions", &st.TotalAbstentions},
		{"SELECT COUNT(DISTINCT subject) FROM claims", &st.TotalSubjects},
	}
	for _, q := range scalars {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("counting (%s): %w", q.query, err)
		}
	}

	groups := []struct {
		query string
		dst   map[string]int
	}{
		{"SELECT predicate, COUNT(*) FROM claims GROUP BY predicate", st.ClaimsByPredicate},
		{"SELECT status, COUNT(*) FROM claims GROUP BY status", st.ClaimsByStatus},
		{"SELECT reason_code, COUNT(*) FROM abstentions GROUP BY reason_code", st.AbstentionsByCode},
	}
	for _, g := range groups {
		rows, err := s.db.QueryContext(ctx, g.query)
		if err != nil {
			return nil, fmt.Errorf("grouping (%s): %w", g.query, err)
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning group row: %w", err)
			}
			g.dst[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT model_version FROM claims ORDER BY model_version")
	if err != nil {
		return nil, fmt.Errorf("listing model versions: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning model version: %w", err)
		}
		st.ModelVersions = append(st.ModelVersions, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if s.dbPath != ":memory:" {
		if info, err := os.Stat(s.dbPath); err == nil {
			st.StorageBytes = info.Size()
		}
	}

	lastRun, err := s.LastRun(ctx)
	if err != nil {
		return nil, err
	}
	st.LastRun = lastRun

	return st, nil
}
