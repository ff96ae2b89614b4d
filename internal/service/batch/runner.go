package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/pkg/logger"
)

// StageFunc 단계 실행, 처리 건수 반환
type StageFunc func(ctx context.Context, date time.Time) (int, error)

// Step 배치 단계
type Step struct {
	Stage fetcher.Stage
	Run   StageFunc
}

// Calendar 영업일 조회
type Calendar interface {
	Sequence(ctx context.Context, date time.Time) (int, error)
	Between(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Confirmer asks whether a stage should run
type Confirmer func(question string) (bool, error)

// RangeResult 기간 실행 결과
type RangeResult struct {
	Dates  int
	Failed int
}

// Runner 단계 순차 실행 + stage_runs 기록
type Runner struct {
	steps    []Step
	runs     fetcher.StageRunRepository
	calendar Calendar
	confirm  Confirmer
	out      io.Writer
}

// NewRunner 생성
func NewRunner(steps []Step, runs fetcher.StageRunRepository, cal Calendar, out io.Writer) *Runner {
	return &Runner{steps: steps, runs: runs, calendar: cal, out: out}
}

// WithConfirm 단계별 y/n 확인 모드
func (r *Runner) WithConfirm(c Confirmer) *Runner {
	r.confirm = c
	return r
}

// RunStage executes one stage and records the outcome in stage_runs.
// A failure to record is logged but does not fail the stage.
func (r *Runner) RunStage(ctx context.Context, step Step, date time.Time) error {
	stageLog := logger.Stage(string(step.Stage), calendar.FormatDate(date))

	run := fetcher.NewStageRun(step.Stage, date)
	if err := r.runs.Create(ctx, run); err != nil {
		stageLog.Warn().Err(err).Msg("Failed to record stage start")
	}

	stageLog.Info().Str("run_id", run.RunID.String()).Msg("Stage started")
	rows, err := step.Run(ctx, date)
	run.Finish(rows, err)

	if uerr := r.runs.Update(ctx, run); uerr != nil {
		stageLog.Warn().Err(uerr).Msg("Failed to record stage result")
	}

	if err != nil {
		stageLog.Error().Err(err).Int64("duration_ms", *run.DurationMs).Msg("Stage failed")
		return fmt.Errorf("%s: %w", step.Stage, err)
	}

	stageLog.Info().
		Int("rows", rows).
		Int64("duration_ms", *run.DurationMs).
		Msg("Stage finished")
	return nil
}

// RunDate runs every stage for one date and stops at the first failure.
// A date missing from the refreshed calendar ends the run without error.
func (r *Runner) RunDate(ctx context.Context, date time.Time) error {
	var failed int
	ok, err := r.run(ctx, date, true, &failed)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	fmt.Fprintf(r.out, "[✔] %s 배치 완료\n", calendar.FormatDate(date))
	return nil
}

// RunRange runs every stage for each trading day in [from, to].
// Failures are logged and the run moves on.
func (r *Runner) RunRange(ctx context.Context, from, to time.Time) (RangeResult, error) {
	dates, err := r.calendar.Between(ctx, from, to)
	if err != nil {
		return RangeResult{}, err
	}
	if len(dates) == 0 {
		fmt.Fprintf(r.out, "%s ~ %s 구간에 영업일이 없습니다. 종료합니다.\n",
			calendar.FormatDate(from), calendar.FormatDate(to))
		return RangeResult{}, nil
	}

	result := RangeResult{Dates: len(dates)}
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fmt.Fprintf(r.out, "\n=== [날짜: %s] ===\n", calendar.FormatDate(date))
		failedBefore := result.Failed
		if _, err := r.run(ctx, date, false, &result.Failed); err != nil {
			return result, err
		}
		if result.Failed > failedBefore {
			log.Warn().
				Str("date", calendar.FormatDate(date)).
				Int("failed_stages", result.Failed-failedBefore).
				Msg("Date finished with failures")
		}
	}

	log.Info().
		Str("from", calendar.FormatDate(from)).
		Str("to", calendar.FormatDate(to)).
		Int("dates", result.Dates).
		Int("failed_stages", result.Failed).
		Msg("Range batch finished")

	return result, nil
}

// run returns false when the date is not a trading day
func (r *Runner) run(ctx context.Context, date time.Time, abort bool, failed *int) (bool, error) {
	checked := false
	for _, step := range r.steps {
		if !checked && step.Stage != fetcher.StagePurge && step.Stage != fetcher.StageCalendar {
			checked = true
			if _, err := r.calendar.Sequence(ctx, date); err != nil {
				if calendar.IsNotFoundError(err) {
					fmt.Fprintf(r.out, "%s 은(는) 영업일이 아닙니다. 종료합니다.\n", calendar.FormatDate(date))
					return false, nil
				}
				return false, fmt.Errorf("check trading day: %w", err)
			}
		}

		if r.confirm != nil {
			yes, err := r.confirm(fmt.Sprintf("▶ %s 실행할까요?", step.Stage))
			if err != nil {
				return false, err
			}
			if !yes {
				r.skip(ctx, step, date)
				continue
			}
		}

		if err := r.RunStage(ctx, step, date); err != nil {
			if abort {
				return false, err
			}
			*failed++
		}
	}
	return true, nil
}

func (r *Runner) skip(ctx context.Context, step Step, date time.Time) {
	run := fetcher.NewStageRun(step.Stage, date)
	run.Skip()
	if err := r.runs.Create(ctx, run); err != nil {
		log.Warn().Err(err).Str("stage", string(step.Stage)).Msg("Failed to record skipped stage")
	}
	fmt.Fprintf(r.out, "⏩ %s 건너뜀\n", step.Stage)
}
