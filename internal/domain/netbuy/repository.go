package netbuy

import (
	"context"
	"time"
)

// Repository 순매수 저장소 (market.net_buy_record)
type Repository interface {
	// DeleteByDate 기준일 데이터 삭제
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)

	// InsertBatch 일괄 저장
	InsertBatch(ctx context.Context, records []Record) (int, error)

	// UpdateRanks (date, class) 내 순매수 수량/대금 DENSE_RANK 내림차순 갱신
	UpdateRanks(ctx context.Context, date time.Time, class InvestorClass) error

	// ListQualifying 기준일 rank_amt < cutoff OR rank_qty < cutoff 인 레코드
	ListQualifying(ctx context.Context, date time.Time, cutoff int) ([]Record, error)

	// ListByDates 주어진 날짜/종목의 레코드
	ListByDates(ctx context.Context, dates []time.Time, codes []string) ([]Record, error)

	// SumRankAmounts 기준일 종목별 rank_amt 합 (투자자별)
	SumRankAmounts(ctx context.Context, date time.Time) (map[string]RankAmounts, error)
}
