package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/krxflow/internal/domain/fetcher"
)

// History 기준일 실행 이력 (시작 시각 순)
func (r *Runner) History(ctx context.Context, date time.Time) ([]*fetcher.StageRun, error) {
	runs, err := r.runs.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list stage runs: %w", err)
	}
	return runs, nil
}

// Lookup run_id 로 실행 이력 조회
func (r *Runner) Lookup(ctx context.Context, runID uuid.UUID) (*fetcher.StageRun, error) {
	run, err := r.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get stage run %s: %w", runID, err)
	}
	return run, nil
}

// PrintRuns 실행 이력 출력 (단계, 상태, 건수, 소요시간, run_id, 오류)
func PrintRuns(w io.Writer, runs []*fetcher.StageRun) {
	fmt.Fprintf(w, "%-10s %-8s %8s %10s  %-36s  %s\n", "STAGE", "STATUS", "ROWS", "DURATION", "RUN_ID", "ERROR")
	for _, run := range runs {
		duration := "-"
		if run.DurationMs != nil {
			duration = (time.Duration(*run.DurationMs) * time.Millisecond).String()
		}
		errMsg := ""
		if run.ErrorMessage != nil {
			errMsg = *run.ErrorMessage
		}
		fmt.Fprintf(w, "%-10s %-8s %8d %10s  %-36s  %s\n",
			run.Stage, run.Status, run.RowsAffected, duration, run.RunID, errMsg)
	}
}
