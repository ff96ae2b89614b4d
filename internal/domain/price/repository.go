package price

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository 일별 시세 저장소 (market.daily_price)
type Repository interface {
	// DeleteByDate 기준일 시세 삭제
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)

	// InsertBatch 일괄 저장
	InsertBatch(ctx context.Context, prices []DailyPrice) (int, error)

	// ListBetween 기간 [from, to] 전 종목 시세 (종목코드, 날짜 오름차순)
	ListBetween(ctx context.Context, from, to time.Time) ([]DailyPrice, error)

	// ChangeRates 기준일 종목별 등락률
	ChangeRates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error)
}

// IndexRepository 기술 지표 저장소 (analysis.technical_index)
type IndexRepository interface {
	// UpsertBatch (date, stock_code) 기준 upsert
	UpsertBatch(ctx context.Context, indexes []TechnicalIndex) (int, error)
}
