package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/market"
)

// Service 네이버 지수 요약 + 상한가 종목 수집
type Service struct {
	naver fetcher.NaverClient
	repo  market.Repository
}

// NewService 서비스 생성
func NewService(naver fetcher.NaverClient, repo market.Repository) *Service {
	return &Service{naver: naver, repo: repo}
}

// Run stores the index summary and the upper-limit list for date.
// Each page is independent, a fetch failure on one is logged and the other still runs.
func (s *Service) Run(ctx context.Context, date time.Time) (int, error) {
	logger := log.With().Str("date", calendar.FormatDate(date)).Logger()
	rows := 0

	summary, err := s.naver.FetchMarketSummary(ctx)
	switch {
	case err == nil:
		summary.Date = date
		if err := s.repo.UpsertSummary(ctx, *summary); err != nil {
			return 0, fmt.Errorf("save market summary: %w", err)
		}
		rows++
		logger.Info().
			Str("kospi", summary.KOSPI.Value.String()).
			Str("kosdaq", summary.KOSDAQ.Value.String()).
			Str("kospi200", summary.KOSPI200.Value.String()).
			Msg("Market summary saved")
	case fetcher.IsExternalError(err):
		logger.Warn().Err(err).Msg("Failed to fetch market summary")
	default:
		return 0, fmt.Errorf("fetch market summary: %w", err)
	}

	stocks, err := s.naver.FetchUpperLimit(ctx)
	if err != nil {
		if fetcher.IsExternalError(err) {
			logger.Warn().Err(err).Msg("Failed to fetch upper limit stocks")
			return rows, nil
		}
		return rows, fmt.Errorf("fetch upper limit: %w", err)
	}
	for i := range stocks {
		stocks[i].Date = date
	}

	n, err := s.repo.ReplaceFeatured(ctx, date, stocks)
	if err != nil {
		return rows, fmt.Errorf("save upper limit: %w", err)
	}
	logger.Info().Int("rows", n).Msg("Upper limit stocks saved")

	return rows + n, nil
}
