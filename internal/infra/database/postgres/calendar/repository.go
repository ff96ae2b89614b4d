package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// Repository PostgreSQL 영업일 저장소 (market.trading_day)
type Repository struct {
	pool *postgres.Pool
}

// NewRepository 저장소 생성
func NewRepository(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSequence 영업일 순번 조회
func (r *Repository) GetSequence(ctx context.Context, classification string, date time.Time) (int, error) {
	var seq int
	err := r.pool.QueryRow(ctx, `
		SELECT sequence
		FROM market.trading_day
		WHERE classification = $1 AND trade_date = $2 AND work_yn = 'Y'
	`, classification, date).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", calendar.ErrNotFound, calendar.FormatDate(date))
		}
		return 0, fmt.Errorf("get sequence: %w", err)
	}
	return seq, nil
}

// ListBySequence 순번 범위 조회
func (r *Repository) ListBySequence(ctx context.Context, classification string, from, to int) ([]calendar.TradingDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT classification, trade_date, sequence, work_yn
		FROM market.trading_day
		WHERE classification = $1 AND sequence BETWEEN $2 AND $3
		ORDER BY sequence
	`, classification, from, to)
	if err != nil {
		return nil, fmt.Errorf("query trading days by sequence: %w", err)
	}
	return collectDays(rows)
}

// ListBetween 날짜 범위 조회
func (r *Repository) ListBetween(ctx context.Context, classification string, from, to time.Time) ([]calendar.TradingDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT classification, trade_date, sequence, work_yn
		FROM market.trading_day
		WHERE classification = $1 AND trade_date BETWEEN $2 AND $3 AND work_yn = 'Y'
		ORDER BY trade_date
	`, classification, from, to)
	if err != nil {
		return nil, fmt.Errorf("query trading days between: %w", err)
	}
	return collectDays(rows)
}

// ReplaceAll 구분 전체 삭제 후 저장 (단일 트랜잭션)
func (r *Repository) ReplaceAll(ctx context.Context, classification string, days []calendar.TradingDay) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM market.trading_day WHERE classification = $1`, classification); err != nil {
		return 0, fmt.Errorf("delete trading days: %w", err)
	}

	rowsSrc := make([][]any, 0, len(days))
	for _, d := range days {
		rowsSrc = append(rowsSrc, []any{classification, d.Date, d.Sequence, d.WorkYN})
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"market", "trading_day"},
		[]string{"classification", "trade_date", "sequence", "work_yn"},
		pgx.CopyFromRows(rowsSrc),
	)
	if err != nil {
		return 0, fmt.Errorf("copy trading days: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	log.Debug().
		Str("classification", classification).
		Int64("count", n).
		Msg("Replaced trading calendar")

	return int(n), nil
}

func collectDays(rows pgx.Rows) ([]calendar.TradingDay, error) {
	defer rows.Close()

	var days []calendar.TradingDay
	for rows.Next() {
		var d calendar.TradingDay
		if err := rows.Scan(&d.Classification, &d.Date, &d.Sequence, &d.WorkYN); err != nil {
			return nil, fmt.Errorf("scan trading day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
