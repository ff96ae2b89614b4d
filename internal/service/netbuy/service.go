package netbuy

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/netbuy"
)

// Service 투자자별 순매수 수집 + 순위 산정
type Service struct {
	krx        fetcher.KRXClient
	netBuyRepo netbuy.Repository
}

// NewService 서비스 생성
func NewService(krx fetcher.KRXClient, netBuyRepo netbuy.Repository) *Service {
	return &Service{krx: krx, netBuyRepo: netBuyRepo}
}

// Run replaces the date's net-buy records for every investor class.
// A class whose download fails is logged and contributes no rows.
func (s *Service) Run(ctx context.Context, date time.Time) (int, error) {
	deleted, err := s.netBuyRepo.DeleteByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("delete net-buy: %w", err)
	}
	log.Debug().Str("date", calendar.FormatDate(date)).Int64("deleted", deleted).Msg("Cleared net-buy records")

	total := 0
	for _, class := range netbuy.InvestorClasses {
		logger := log.With().
			Str("date", calendar.FormatDate(date)).
			Str("investor", class.Label()).
			Logger()

		records, err := s.krx.FetchNetBuy(ctx, date, class)
		if err != nil {
			if fetcher.IsExternalError(err) {
				logger.Warn().Err(err).Msg("Failed to fetch net-buy")
				continue
			}
			return total, fmt.Errorf("fetch %s net-buy: %w", class.Label(), err)
		}

		n, err := s.netBuyRepo.InsertBatch(ctx, records)
		if err != nil {
			return total, fmt.Errorf("save %s net-buy: %w", class.Label(), err)
		}
		if err := s.netBuyRepo.UpdateRanks(ctx, date, class); err != nil {
			return total, fmt.Errorf("rank %s net-buy: %w", class.Label(), err)
		}
		total += n

		logger.Info().Int("rows", n).Msg("Net-buy saved and ranked")
	}

	return total, nil
}
