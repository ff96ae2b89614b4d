package indicator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/price"
)

// Calendar 영업일 윈도우 조회
type Calendar interface {
	Window(ctx context.Context, date time.Time, n int, order calendar.Order) ([]time.Time, error)
}

// Service 기준일 RSI/OBV 계산 → analysis.technical_index
type Service struct {
	calendar  Calendar
	priceRepo price.Repository
	indexRepo price.IndexRepository
}

// NewService 서비스 생성
func NewService(cal Calendar, priceRepo price.Repository, indexRepo price.IndexRepository) *Service {
	return &Service{calendar: cal, priceRepo: priceRepo, indexRepo: indexRepo}
}

// Run computes indicators for every stock with a full 15-day window.
// Stocks with missing days or a flat window are skipped.
func (s *Service) Run(ctx context.Context, date time.Time) (int, error) {
	window, err := s.calendar.Window(ctx, date, Period+1, calendar.Ascending)
	if err != nil {
		return 0, fmt.Errorf("resolve window: %w", err)
	}

	prices, err := s.priceRepo.ListBetween(ctx, window[0], window[len(window)-1])
	if err != nil {
		return 0, fmt.Errorf("list prices: %w", err)
	}

	var (
		indexes        []price.TechnicalIndex
		partial, undef int
	)
	for _, series := range groupByStock(prices) {
		if len(series) != len(window) {
			partial++
			continue
		}

		closes := make([]int64, len(series))
		volumes := make([]int64, len(series))
		for i, p := range series {
			closes[i] = p.Close
			volumes[i] = p.Volume
		}

		rsi, ok := RSI(closes)
		if !ok {
			undef++
			continue
		}

		last := series[len(series)-1]
		indexes = append(indexes, price.TechnicalIndex{
			Date:      date,
			StockCode: last.StockCode,
			StockName: last.StockName,
			Close:     last.Close,
			RSI:       rsi,
			OBV:       OBV(closes, volumes),
		})
	}

	n := 0
	if len(indexes) > 0 {
		if n, err = s.indexRepo.UpsertBatch(ctx, indexes); err != nil {
			return 0, fmt.Errorf("upsert indexes: %w", err)
		}
	}

	log.Info().
		Str("date", calendar.FormatDate(date)).
		Int("saved", n).
		Int("skipped_partial", partial).
		Int("skipped_flat", undef).
		Msg("Technical indicators calculated")

	return n, nil
}

// groupByStock prices 는 (종목코드, 날짜) 순으로 정렬되어 있어야 한다
func groupByStock(prices []price.DailyPrice) [][]price.DailyPrice {
	var groups [][]price.DailyPrice
	start := 0
	for i := 1; i <= len(prices); i++ {
		if i == len(prices) || prices[i].StockCode != prices[start].StockCode {
			groups = append(groups, prices[start:i])
			start = i
		}
	}
	return groups
}
