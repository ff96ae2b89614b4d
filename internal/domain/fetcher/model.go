package fetcher

import (
	"time"

	"github.com/google/uuid"
)

// Stage 배치 단계
type Stage string

const (
	StagePurge     Stage = "purge"
	StageCalendar  Stage = "calendar"
	StagePrice     Stage = "price"
	StageIndicator Stage = "indicator"
	StageNetBuy    Stage = "netbuy"
	StageMatrix    Stage = "matrix"
	StageSummary   Stage = "summary"
	StageMarket    Stage = "market"
)

// BatchStages 배치 실행 순서
var BatchStages = []Stage{
	StagePurge,
	StageCalendar,
	StagePrice,
	StageIndicator,
	StageNetBuy,
	StageMatrix,
	StageSummary,
}

// RunStatus 단계 실행 상태
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
	RunStatusSkipped RunStatus = "skipped"
)

// StageRun 단계 실행 이력 (system.stage_runs)
type StageRun struct {
	RunID        uuid.UUID
	Stage        Stage
	BaseDate     time.Time
	Status       RunStatus
	RowsAffected int
	ErrorMessage *string
	StartedAt    time.Time
	FinishedAt   *time.Time
	DurationMs   *int64
}

// NewStageRun starts a run record
func NewStageRun(stage Stage, date time.Time) *StageRun {
	return &StageRun{
		RunID:     uuid.New(),
		Stage:     stage,
		BaseDate:  date,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
}

// Finish stamps the run with its outcome
func (r *StageRun) Finish(rows int, err error) {
	now := time.Now()
	ms := now.Sub(r.StartedAt).Milliseconds()
	r.FinishedAt = &now
	r.DurationMs = &ms
	r.RowsAffected = rows

	if err != nil {
		msg := err.Error()
		r.ErrorMessage = &msg
		r.Status = RunStatusFailed
		return
	}
	r.Status = RunStatusSuccess
}

// Skip marks the run as not executed
func (r *StageRun) Skip() {
	r.Finish(0, nil)
	r.Status = RunStatusSkipped
}
