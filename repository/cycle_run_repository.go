package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"borrowbot/database"
	"borrowbot/models"

	"github.com/jackc/pgx/v5"
)

// CycleRunRepository stores scheduler cycle reports
type CycleRunRepository struct {
	q queryable
}

// NewCycleRunRepository creates a new cycle run repository
func NewCycleRunRepository(db *database.DB) *CycleRunRepository {
	return &CycleRunRepository{q: db.Pool}
}

const cycleRunColumns = `id, pipeline, run_day, remaining, selected, succeeded, skipped, failed,
		       execution_summary, started_at, finished_at, created_at`

func scanCycleRun(row pgx.Row) (*models.CycleRun, error) {
	var run models.CycleRun
	var summaryJSON []byte

	err := row.Scan(
		&run.ID,
		&run.Pipeline,
		&run.RunDay,
		&run.Remaining,
		&run.Selected,
		&run.Succeeded,
		&run.Skipped,
		&run.Failed,
		&summaryJSON,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}
	return &run, nil
}

// Create records one cycle. The run day is stored as a date.
func (r *CycleRunRepository) Create(ctx context.Context, run *models.CycleRun) error {
	run.RunDay = dateOnly(run.RunDay)

	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO cycle_runs
		(pipeline, run_day, remaining, selected, succeeded, skipped, failed,
		 execution_summary, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.Pipeline,
		run.RunDay,
		run.Remaining,
		run.Selected,
		run.Succeeded,
		run.Skipped,
		run.Failed,
		summaryJSON,
		run.StartedAt,
		run.FinishedAt,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s cycle run for %s: %w",
			run.Pipeline, run.RunDay.Format(time.DateOnly), err)
	}

	return nil
}

// ListByDay returns the cycles of pipeline on day, oldest first
func (r *CycleRunRepository) ListByDay(ctx context.Context, pipeline string, day time.Time) ([]*models.CycleRun, error) {
	query := `
		SELECT ` + cycleRunColumns + `
		FROM cycle_runs
		WHERE pipeline = $1 AND run_day = $2
		ORDER BY started_at, id
	`

	rows, err := r.q.Query(ctx, query, pipeline, dateOnly(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s cycle runs: %w", pipeline, err)
	}
	defer rows.Close()

	var runs []*models.CycleRun
	for rows.Next() {
		run, err := scanCycleRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetLatest returns the most recent cycle of pipeline, or nil if it never ran
func (r *CycleRunRepository) GetLatest(ctx context.Context, pipeline string) (*models.CycleRun, error) {
	query := `
		SELECT ` + cycleRunColumns + `
		FROM cycle_runs
		WHERE pipeline = $1
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	run, err := scanCycleRun(r.q.QueryRow(ctx, query, pipeline))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest %s cycle run: %w", pipeline, err)
	}
	return run, nil
}
