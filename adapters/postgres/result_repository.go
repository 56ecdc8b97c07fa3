package postgres

import (
	"context"
	"fmt"

	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal"

	"github.com/jmoiron/sqlx"
)

// resultRow maps one trial result onto the experiment_results table
type resultRow struct {
	ParticipantID string `db:"participant_id"`
	Position      int    `db:"position"`
	TrialID       int    `db:"trial_id"`
	ClaimText     string `db:"claim_text"`
	Answer        bool   `db:"answer"`
	Confidence    int    `db:"confidence"`
	AIOffered     bool   `db:"ai_offered"`
	AIUsed        bool   `db:"ai_used"`
	IsCorrect     bool   `db:"is_correct"`
	TimeBeforeAI  *int64 `db:"time_before_ai"`
	TimeAfterAI   *int64 `db:"time_after_ai"`
	TimeTotal     int64  `db:"time_total"`
	ScoreDelta    int    `db:"score_delta"`
}

const insertResult = `
	INSERT INTO experiment_results (
		participant_id, position, trial_id, claim_text, answer, confidence,
		ai_offered, ai_used, is_correct, time_before_ai, time_after_ai,
		time_total, score_delta
	) VALUES (
		:participant_id, :position, :trial_id, :claim_text, :answer, :confidence,
		:ai_offered, :ai_used, :is_correct, :time_before_ai, :time_after_ai,
		:time_total, :score_delta
	)`

// ResultRepository is a SubmissionSink that writes a participant's log to
// PostgreSQL in one transaction
type ResultRepository struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB, logger *internal.Logger) *ResultRepository {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ResultRepository{db: db, logger: logger.With("ResultRepository")}
}

// Name identifies the sink
func (r *ResultRepository) Name() string { return "postgres" }

// Submit inserts every result or none of them
func (r *ResultRepository) Submit(ctx context.Context, id core.ParticipantID, results []trial.Result) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for i, res := range results {
		if _, err := tx.NamedExecContext(ctx, insertResult, toRow(id, i, res)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert trial %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	r.logger.Debug("stored %d results for %s", len(results), id)
	return nil
}

// CountResults returns how many rows are stored for a participant
func (r *ResultRepository) CountResults(ctx context.Context, id core.ParticipantID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM experiment_results WHERE participant_id = $1`, id.String())
	return n, err
}

func toRow(id core.ParticipantID, position int, r trial.Result) resultRow {
	return resultRow{
		ParticipantID: id.String(),
		Position:      position,
		TrialID:       r.TrialID,
		ClaimText:     r.ClaimText,
		Answer:        r.Answer,
		Confidence:    r.Confidence,
		AIOffered:     r.AIOffered,
		AIUsed:        r.AIUsed,
		IsCorrect:     r.IsCorrect,
		TimeBeforeAI:  r.TimeBeforeAI,
		TimeAfterAI:   r.TimeAfterAI,
		TimeTotal:     r.TimeTotal,
		ScoreDelta:    r.ScoreDelta,
	}
}
