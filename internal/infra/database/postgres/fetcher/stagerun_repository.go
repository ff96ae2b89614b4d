package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// StageRunRepository PostgreSQL 구현 (system.stage_runs)
type StageRunRepository struct {
	pool *postgres.Pool
}

// NewStageRunRepository 생성자
func NewStageRunRepository(pool *postgres.Pool) *StageRunRepository {
	return &StageRunRepository{pool: pool}
}

const stageRunColumns = `
	run_id, stage, base_date, status, rows_affected, error_message,
	started_at, finished_at, duration_ms
`

// Create 실행 시작 기록
func (r *StageRunRepository) Create(ctx context.Context, run *fetcher.StageRun) error {
	query := `
		INSERT INTO system.stage_runs (` + stageRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		run.RunID,
		string(run.Stage),
		run.BaseDate,
		string(run.Status),
		run.RowsAffected,
		run.ErrorMessage,
		run.StartedAt,
		run.FinishedAt,
		run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("create stage run: %w", err)
	}

	return nil
}

// Update 실행 완료/실패 기록
func (r *StageRunRepository) Update(ctx context.Context, run *fetcher.StageRun) error {
	query := `
		UPDATE system.stage_runs
		SET status = $1,
		    rows_affected = $2,
		    error_message = $3,
		    finished_at = $4,
		    duration_ms = $5
		WHERE run_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		string(run.Status),
		run.RowsAffected,
		run.ErrorMessage,
		run.FinishedAt,
		run.DurationMs,
		run.RunID,
	)
	if err != nil {
		return fmt.Errorf("update stage run: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: run_id=%s", fetcher.ErrRunNotFound, run.RunID)
	}

	return nil
}

// GetByID run_id 로 조회
func (r *StageRunRepository) GetByID(ctx context.Context, runID uuid.UUID) (*fetcher.StageRun, error) {
	query := `SELECT ` + stageRunColumns + ` FROM system.stage_runs WHERE run_id = $1`

	run, err := scanStageRun(r.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fetcher.ErrRunNotFound
		}
		return nil, fmt.Errorf("get stage run: %w", err)
	}

	return run, nil
}

// ListByDate 기준일 실행 이력 (시작 시각 순)
func (r *StageRunRepository) ListByDate(ctx context.Context, date time.Time) ([]*fetcher.StageRun, error) {
	query := `
		SELECT ` + stageRunColumns + `
		FROM system.stage_runs
		WHERE base_date = $1
		ORDER BY started_at
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query stage runs: %w", err)
	}
	defer rows.Close()

	var runs []*fetcher.StageRun
	for rows.Next() {
		run, err := scanStageRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func scanStageRun(row pgx.Row) (*fetcher.StageRun, error) {
	var (
		run    fetcher.StageRun
		stage  string
		status string
	)
	err := row.Scan(
		&run.RunID,
		&stage,
		&run.BaseDate,
		&status,
		&run.RowsAffected,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.FinishedAt,
		&run.DurationMs,
	)
	if err != nil {
		return nil, err
	}
	run.Stage = fetcher.Stage(stage)
	run.Status = fetcher.RunStatus(status)
	return &run, nil
}
