package batch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	calendarsvc "github.com/wonny/krxflow/internal/service/calendar"
	"github.com/wonny/krxflow/internal/testutil/memstore"
)

var d = memstore.Date

// recorder 실행된 단계를 (날짜/단계) 순서로 기록
type recorder struct {
	calls []string
	fail  map[fetcher.Stage]bool
}

func (r *recorder) steps(stages ...fetcher.Stage) []Step {
	steps := make([]Step, len(stages))
	for i, stage := range stages {
		stage := stage
		steps[i] = Step{Stage: stage, Run: func(ctx context.Context, date time.Time) (int, error) {
			r.calls = append(r.calls, calendar.FormatDate(date)+"/"+string(stage))
			if r.fail[stage] {
				return 0, errors.New("stage exploded")
			}
			return 1, nil
		}}
	}
	return steps
}

func newRunner(rec *recorder, runs *memstore.StageRuns, out *bytes.Buffer, days ...time.Time) *Runner {
	resolver := calendarsvc.NewResolver(memstore.NewCalendar(days...))
	return NewRunner(rec.steps(fetcher.BatchStages...), runs, resolver, out)
}

func TestRunner_RunDate(t *testing.T) {
	rec := &recorder{}
	runs := memstore.NewStageRuns()
	var out bytes.Buffer

	err := newRunner(rec, runs, &out, d("20250403"), d("20250404")).RunDate(context.Background(), d("20250404"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"20250404/purge", "20250404/calendar", "20250404/price", "20250404/indicator",
		"20250404/netbuy", "20250404/matrix", "20250404/summary",
	}, rec.calls)

	recorded := runs.All()
	require.Len(t, recorded, len(fetcher.BatchStages))
	for _, run := range recorded {
		assert.Equal(t, fetcher.RunStatusSuccess, run.Status)
		assert.Equal(t, 1, run.RowsAffected)
		assert.NotNil(t, run.FinishedAt)
	}
	assert.Contains(t, out.String(), "20250404 배치 완료")
}

func TestRunner_RunDate_AbortsOnFailure(t *testing.T) {
	rec := &recorder{fail: map[fetcher.Stage]bool{fetcher.StagePrice: true}}
	runs := memstore.NewStageRuns()

	err := newRunner(rec, runs, &bytes.Buffer{}, d("20250404")).RunDate(context.Background(), d("20250404"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "price")

	assert.Equal(t, []string{"20250404/purge", "20250404/calendar", "20250404/price"}, rec.calls)

	recorded := runs.All()
	require.Len(t, recorded, 3)
	assert.Equal(t, fetcher.RunStatusFailed, recorded[2].Status)
	require.NotNil(t, recorded[2].ErrorMessage)
	assert.Equal(t, "stage exploded", *recorded[2].ErrorMessage)
}

func TestRunner_RunDate_NotTradingDay(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer

	err := newRunner(rec, memstore.NewStageRuns(), &out, d("20250404")).RunDate(context.Background(), d("20250405"))
	require.NoError(t, err)

	assert.Equal(t, []string{"20250405/purge", "20250405/calendar"}, rec.calls)
	assert.Contains(t, out.String(), "20250405 은(는) 영업일이 아닙니다")
}

func TestRunner_RunRange_ContinuesOnFailure(t *testing.T) {
	rec := &recorder{fail: map[fetcher.Stage]bool{fetcher.StageMatrix: true}}
	runs := memstore.NewStageRuns()

	r := newRunner(rec, runs, &bytes.Buffer{}, d("20250402"), d("20250403"), d("20250404"), d("20250407"))
	result, err := r.RunRange(context.Background(), d("20250403"), d("20250406"))
	require.NoError(t, err)

	assert.Equal(t, RangeResult{Dates: 2, Failed: 2}, result)
	assert.Len(t, rec.calls, 2*len(fetcher.BatchStages))
	assert.Equal(t, "20250403/summary", rec.calls[len(fetcher.BatchStages)-1])
	assert.Equal(t, "20250404/summary", rec.calls[len(rec.calls)-1])
}

func TestRunner_RunRange_Empty(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer

	r := newRunner(rec, memstore.NewStageRuns(), &out, d("20250404"))
	result, err := r.RunRange(context.Background(), d("20250405"), d("20250406"))
	require.NoError(t, err)
	assert.Zero(t, result.Dates)
	assert.Empty(t, rec.calls)
	assert.Contains(t, out.String(), "영업일이 없습니다")
}

func TestRunner_StepConfirm(t *testing.T) {
	rec := &recorder{}
	runs := memstore.NewStageRuns()
	var out bytes.Buffer

	answers := map[string]bool{"▶ purge 실행할까요?": false}
	r := newRunner(rec, runs, &out, d("20250404")).WithConfirm(func(q string) (bool, error) {
		yes, ok := answers[q]
		return !ok || yes, nil
	})

	require.NoError(t, r.RunDate(context.Background(), d("20250404")))
	assert.NotContains(t, rec.calls, "20250404/purge")
	assert.Len(t, rec.calls, len(fetcher.BatchStages)-1)

	recorded := runs.All()
	assert.Equal(t, fetcher.StagePurge, recorded[0].Stage)
	assert.Equal(t, fetcher.RunStatusSkipped, recorded[0].Status)
	assert.Contains(t, out.String(), "purge 건너뜀")
}

func TestRunner_StepConfirm_InputClosed(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec, memstore.NewStageRuns(), &bytes.Buffer{}, d("20250404")).WithConfirm(func(string) (bool, error) {
		return false, errors.New("no input")
	})

	assert.Error(t, r.RunDate(context.Background(), d("20250404")))
	assert.Empty(t, rec.calls)
}

func TestRunner_HistoryAndLookup(t *testing.T) {
	rec := &recorder{fail: map[fetcher.Stage]bool{fetcher.StageNetBuy: true}}
	runs := memstore.NewStageRuns()
	runner := newRunner(rec, runs, &bytes.Buffer{}, d("20250403"), d("20250404"))
	ctx := context.Background()

	require.NoError(t, runner.RunDate(ctx, d("20250403")))
	require.Error(t, runner.RunDate(ctx, d("20250404")))

	history, err := runner.History(ctx, d("20250404"))
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, fetcher.StagePurge, history[0].Stage)
	assert.Equal(t, fetcher.StageNetBuy, history[4].Stage)
	assert.Equal(t, fetcher.RunStatusFailed, history[4].Status)

	run, err := runner.Lookup(ctx, history[4].RunID)
	require.NoError(t, err)
	require.NotNil(t, run.ErrorMessage)
	assert.Equal(t, "stage exploded", *run.ErrorMessage)

	var out bytes.Buffer
	PrintRuns(&out, history)
	assert.Contains(t, out.String(), "STATUS")
	assert.Contains(t, out.String(), "failed")
	assert.Contains(t, out.String(), "stage exploded")
	assert.Contains(t, out.String(), history[0].RunID.String())

	_, err = runner.Lookup(ctx, uuid.New())
	assert.ErrorIs(t, err, fetcher.ErrRunNotFound)
}
