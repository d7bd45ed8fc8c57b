package store

import "fmt"

// migrate creates all tables if they don't exist and seeds metadata.
func (s *SQLiteStore) migrate() error {
	statements := []string{
		// Versioned claims. The uniqueness tuple makes writes
		// idempotent per model version.
		`CREATE TABLE IF NOT EXISTS claims (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			subject       TEXT NOT NULL,
			predicate     TEXT NOT NULL,
			object_value  TEXT NOT NULL,
			probability   REAL NOT NULL DEFAULT 0,
			status        TEXT NOT NULL DEFAULT 'tentative',
			notes         TEXT NOT NULL DEFAULT '',
			model_version TEXT NOT NULL,
			created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(subject, predicate, object_value, model_version)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_claims_subject ON claims(subject)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_predicate ON claims(predicate)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_subject_predicate ON claims(subject, predicate)`,

		// Evidence rows. Replaced as a set on every claim upsert.
		`CREATE TABLE IF NOT EXISTS evidence (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			claim_id      INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
			evidence_type TEXT NOT NULL CHECK(evidence_type IN ('membership','bio','display_name','message','feature')),
			evidence_ref  TEXT NOT NULL,
			weight        REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_evidence_claim_id ON evidence(claim_id)`,

		// Abstentions are append-only: "insufficient evidence" is a
		// queryable outcome, not a missing row.
		`CREATE TABLE IF NOT EXISTS abstentions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			subject       TEXT NOT NULL,
			predicate     TEXT NOT NULL,
			reason_code   TEXT NOT NULL,
			details       TEXT NOT NULL DEFAULT '',
			model_version TEXT NOT NULL,
			created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_abstentions_subject ON abstentions(subject)`,

		// Run bookkeeping.
		`CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			model_version  TEXT NOT NULL,
			priors_version TEXT NOT NULL DEFAULT '',
			users_scored   INTEGER NOT NULL DEFAULT 0,
			claims_written INTEGER NOT NULL DEFAULT 0,
			abstentions    INTEGER NOT NULL DEFAULT 0,
			started_at     DATETIME,
			finished_at    DATETIME
		)`,

		// Metadata key-value store
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT
		)`,

		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', '1')`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
