package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/krxflow/internal/domain/calendar"
)

// Resolver 영업일 순번/윈도우 계산기
type Resolver struct {
	repo           calendar.Repository
	classification string
}

// NewResolver 주식 영업일 기준 Resolver 생성
func NewResolver(repo calendar.Repository) *Resolver {
	return &Resolver{repo: repo, classification: calendar.ClassificationStock}
}

// Sequence 영업일 순번. 영업일이 아니면 calendar.ErrNotFound
func (r *Resolver) Sequence(ctx context.Context, date time.Time) (int, error) {
	return r.repo.GetSequence(ctx, r.classification, date)
}

// Window returns the n trading days ending at date (inclusive).
// A partial window is never returned.
func (r *Resolver) Window(ctx context.Context, date time.Time, n int, order calendar.Order) ([]time.Time, error) {
	if n < 1 {
		return nil, fmt.Errorf("window size %d: %w", n, calendar.ErrInsufficientHistory)
	}

	seq, err := r.Sequence(ctx, date)
	if err != nil {
		return nil, err
	}

	from := seq - n + 1
	if from < 1 {
		return nil, fmt.Errorf("%s needs %d days, sequence is %d: %w",
			calendar.FormatDate(date), n, seq, calendar.ErrInsufficientHistory)
	}

	days, err := r.repo.ListBySequence(ctx, r.classification, from, seq)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}
	if len(days) != n {
		return nil, fmt.Errorf("%s window has %d of %d days: %w",
			calendar.FormatDate(date), len(days), n, calendar.ErrInsufficientHistory)
	}

	dates := make([]time.Time, n)
	for i, d := range days {
		if order == calendar.Descending {
			dates[n-1-i] = d.Date
		} else {
			dates[i] = d.Date
		}
	}
	return dates, nil
}

// Between 기간 [from, to] 영업일 (오름차순)
func (r *Resolver) Between(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from %s is after to %s",
			calendar.ErrInvalidDate, calendar.FormatDate(from), calendar.FormatDate(to))
	}

	days, err := r.repo.ListBetween(ctx, r.classification, from, to)
	if err != nil {
		return nil, fmt.Errorf("list trading days: %w", err)
	}

	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}
	return dates, nil
}

// Refresh 영업일 전체 교체, 순번은 날짜순 1..N
func (r *Resolver) Refresh(ctx context.Context, dates []time.Time) ([]calendar.TradingDay, error) {
	days := calendar.BuildDays(r.classification, dates)

	if _, err := r.repo.ReplaceAll(ctx, r.classification, days); err != nil {
		return nil, fmt.Errorf("replace trading days: %w", err)
	}
	return days, nil
}
