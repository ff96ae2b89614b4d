package calendar

import (
	"context"
	"time"
)

// Repository 영업일 저장소 (market.trading_day)
type Repository interface {
	// GetSequence 영업일 순번 조회, 영업일이 아니면 ErrNotFound
	GetSequence(ctx context.Context, classification string, date time.Time) (int, error)

	// ListBySequence 순번 범위 [from, to] 조회 (오름차순)
	ListBySequence(ctx context.Context, classification string, from, to int) ([]TradingDay, error)

	// ListBetween 날짜 범위 [from, to] 조회 (오름차순)
	ListBetween(ctx context.Context, classification string, from, to time.Time) ([]TradingDay, error)

	// ReplaceAll 구분 전체 교체 (단일 트랜잭션)
	ReplaceAll(ctx context.Context, classification string, days []TradingDay) (int, error)
}
