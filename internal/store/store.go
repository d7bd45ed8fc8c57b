// Package store provides the SQLite storage layer for Dossier.
//
// All profiling output lives in a single SQLite database file:
// - Versioned claims with their evidence rows
// - First-class abstention records ("decided not to claim")
// - Scoring-run bookkeeping
//
// Claims are keyed by (subject, predicate, object_value, model_version)
// so re-scoring with the same model version updates in place instead of
// duplicating, while older model versions persist for side-by-side
// comparison.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.dossier/dossier.db"

// Claim represents one persisted assertion about a subject.
type Claim struct {
	ID           int64
	Subject      string
	Predicate    string
	ObjectValue  string
	Probability  float64
	Status       string
	Notes        string
	ModelVersion string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Evidence is one weighted justification attached to a claim.
type Evidence struct {
	ID           int64
	ClaimID      int64
	EvidenceType string
	EvidenceRef  string
	Weight       float64
}

// Abstention records a decision not to claim, with a reason code.
type Abstention struct {
	ID           int64
	Subject      string
	Predicate    string
	ReasonCode   string
	Details      string
	ModelVersion string
	CreatedAt    time.Time
}

// Run records one scoring run for bookkeeping.
type Run struct {
	ID            string // uuid
	ModelVersion  string
	PriorsVersion string
	UsersScored   int
	ClaimsWritten int
	Abstentions   int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// ClaimFilter controls listing claims.
type ClaimFilter struct {
	Subject      string
	Predicate    string
	Status       string
	ModelVersion string
	Limit        int
	Offset       int
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// SQLiteStore is the claims/evidence/abstentions database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (and if needed bootstraps) the database.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each pooled connection would get its own private in-memory
	// database, so in-memory mode must stay on one connection.
	if cfg.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetDB exposes the raw connection for callers that need it (stats
// queries, tests).
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

// Vacuum runs VACUUM on the database. Manual only.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
