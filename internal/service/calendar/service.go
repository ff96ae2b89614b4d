package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/infra/export"
)

// ExportFile 영업일 엑셀 파일명
const ExportFile = "trading_days.xlsx"

// Service 영업일 갱신 (KRX 기준 종목 시세 → market.trading_day)
type Service struct {
	resolver  *Resolver
	krx       fetcher.KRXClient
	exporter  export.Exporter
	startDate time.Time
	now       func() time.Time
}

// NewService 서비스 생성
func NewService(resolver *Resolver, krx fetcher.KRXClient, exporter export.Exporter, startDate time.Time) *Service {
	return &Service{
		resolver:  resolver,
		krx:       krx,
		exporter:  exporter,
		startDate: startDate,
		now:       time.Now,
	}
}

// Run fetches the calendar from startDate to today and replaces it.
// A failed or empty fetch leaves the stored calendar untouched.
func (s *Service) Run(ctx context.Context, _ time.Time) (int, error) {
	today := s.now()
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	dates, err := s.krx.FetchTradingDays(ctx, s.startDate, to)
	if err != nil {
		return 0, fmt.Errorf("fetch trading days: %w", err)
	}
	if len(dates) == 0 {
		return 0, fmt.Errorf("fetch trading days: %w", fetcher.ErrEmptyPayload)
	}

	days, err := s.resolver.Refresh(ctx, dates)
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("from", calendar.FormatDate(days[0].Date)).
		Str("to", calendar.FormatDate(days[len(days)-1].Date)).
		Int("days", len(days)).
		Msg("Trading calendar refreshed")

	rows := make([][]any, len(days))
	for i, d := range days {
		rows[i] = []any{d.Date.Format("2006-01-02"), d.Sequence, d.WorkYN}
	}
	if _, err := s.exporter.Write(ExportFile, export.Sheet{
		Name:   "trading_day",
		Header: []string{"work_day", "seq", "work_yn"},
		Rows:   rows,
	}); err != nil {
		return len(days), fmt.Errorf("export calendar: %w", err)
	}

	return len(days), nil
}
