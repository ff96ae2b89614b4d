package price

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/price"
	"github.com/wonny/krxflow/internal/infra/export"
)

// Service KRX 시장별 일별 시세 수집
type Service struct {
	krx       fetcher.KRXClient
	priceRepo price.Repository
	exporter  export.Exporter
}

// NewService 서비스 생성
func NewService(krx fetcher.KRXClient, priceRepo price.Repository, exporter export.Exporter) *Service {
	return &Service{krx: krx, priceRepo: priceRepo, exporter: exporter}
}

// Run replaces the date's prices for KOSPI and KOSDAQ.
// A market whose download fails contributes no rows.
func (s *Service) Run(ctx context.Context, date time.Time) (int, error) {
	deleted, err := s.priceRepo.DeleteByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("delete prices: %w", err)
	}
	log.Debug().Str("date", calendar.FormatDate(date)).Int64("deleted", deleted).Msg("Cleared daily prices")

	total := 0
	for _, mkt := range price.Markets {
		prices, err := s.krx.FetchDailyPrices(ctx, date, mkt)
		if err != nil {
			if fetcher.IsExternalError(err) {
				log.Warn().Err(err).Str("market", string(mkt)).Msg("Failed to fetch daily prices")
				continue
			}
			return total, fmt.Errorf("fetch %s prices: %w", mkt, err)
		}

		n, err := s.priceRepo.InsertBatch(ctx, prices)
		if err != nil {
			return total, fmt.Errorf("save %s prices: %w", mkt, err)
		}
		total += n

		log.Info().
			Str("date", calendar.FormatDate(date)).
			Str("market", string(mkt)).
			Int("rows", n).
			Msg("Daily prices saved")

		if _, err := s.exporter.Write(export.FileName(mkt.ExportPrefix(), date), priceSheet(mkt, prices)); err != nil {
			return total, fmt.Errorf("export %s prices: %w", mkt, err)
		}
	}

	return total, nil
}

func priceSheet(mkt price.Market, prices []price.DailyPrice) export.Sheet {
	rows := make([][]any, len(prices))
	for i, p := range prices {
		rows[i] = []any{
			p.StockCode, p.StockName, p.Close, p.Change, export.Decimal(p.ChangeRate),
			p.Open, p.High, p.Low, p.Volume, p.Amount, p.MarketCap, p.Shares,
		}
	}
	return export.Sheet{
		Name:   string(mkt),
		Header: []string{"종목코드", "종목명", "종가", "대비", "등락률", "시가", "고가", "저가", "거래량", "거래대금", "시가총액", "상장주식수"},
		Rows:   rows,
	}
}
