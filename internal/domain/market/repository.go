package market

import (
	"context"
	"time"
)

// Repository 시장 요약 저장소
type Repository interface {
	// UpsertSummary 기준일 요약 저장
	UpsertSummary(ctx context.Context, summary Summary) error

	// ReplaceFeatured 기준일 상한가 목록 교체
	ReplaceFeatured(ctx context.Context, date time.Time, stocks []FeaturedStock) (int, error)
}
