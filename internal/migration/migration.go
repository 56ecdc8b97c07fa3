package migration

import (
	"context"

	"aireliance/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createExperimentResultsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create experiment_results table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createExperimentResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS experiment_results (
			id BIGSERIAL PRIMARY KEY,
			participant_id UUID NOT NULL,
			position INTEGER NOT NULL,
			trial_id INTEGER NOT NULL,
			claim_text TEXT NOT NULL,
			answer BOOLEAN NOT NULL,
			confidence SMALLINT NOT NULL CHECK (confidence BETWEEN 1 AND 7),
			ai_offered BOOLEAN NOT NULL,
			ai_used BOOLEAN NOT NULL,
			is_correct BOOLEAN NOT NULL,
			time_before_ai BIGINT,
			time_after_ai BIGINT,
			time_total BIGINT NOT NULL,
			score_delta INTEGER NOT NULL,
			submitted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (participant_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_experiment_results_participant ON experiment_results(participant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_experiment_results_trial ON experiment_results(trial_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
