package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/dcwatch/pkg/domain"
)

// RunRepository keeps history of ingestion cycles
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun stores stats of a finished cycle and sets its ID
func (r *RunRepository) CreateRun(ctx context.Context, stats *domain.CycleStats) error {
	row := runRow{
		StartedAt:        stats.StartedAt.UTC(),
		FinishedAt:       stats.FinishedAt.UTC(),
		Fetched:          stats.Fetched,
		Processed:        stats.Processed,
		SkippedDuplicate: stats.SkippedDuplicate,
		SkippedRelevance: stats.SkippedRelevance,
		Errors:           stats.Errors,
	}
	query := `
		INSERT INTO runs (started_at, finished_at, fetched, processed, skipped_duplicate, skipped_relevance, errors)
		VALUES (:started_at, :finished_at, :fetched, :processed, :skipped_duplicate, :skipped_relevance, :errors)
	`
	return withLockRetry(ctx, func() error {
		result, err := r.db.NamedExecContext(ctx, query, row)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return fmt.Errorf("create run: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get insert id: %w", err)
		}
		stats.ID = id
		return nil
	})
}

// LastRun returns the most recent cycle, nil if nothing recorded yet
func (r *RunRepository) LastRun(ctx context.Context) (*domain.CycleStats, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last run: %w", err)
	}
	return &domain.CycleStats{
		ID:               row.ID,
		StartedAt:        row.StartedAt,
		FinishedAt:       row.FinishedAt,
		Fetched:          row.Fetched,
		Processed:        row.Processed,
		SkippedDuplicate: row.SkippedDuplicate,
		SkippedRelevance: row.SkippedRelevance,
		Errors:           row.Errors,
	}, nil
}
