package trx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/domain/trx"
	"github.com/wonny/krxflow/internal/infra/export"
)

// MatrixExportPrefix 매트릭스 엑셀 접두사
const MatrixExportPrefix = "transaction_matrix"

// Calendar 영업일 윈도우 조회
type Calendar interface {
	Window(ctx context.Context, date time.Time, n int, order calendar.Order) ([]time.Time, error)
}

// Aggregator 순매수 → 7영업일 매트릭스
type Aggregator struct {
	calendar   Calendar
	netBuyRepo netbuy.Repository
	matrixRepo trx.MatrixRepository
	exporter   export.Exporter
	rankCutoff int
}

// NewAggregator 생성
func NewAggregator(
	cal Calendar,
	netBuyRepo netbuy.Repository,
	matrixRepo trx.MatrixRepository,
	exporter export.Exporter,
	rankCutoff int,
) *Aggregator {
	return &Aggregator{
		calendar:   cal,
		netBuyRepo: netBuyRepo,
		matrixRepo: matrixRepo,
		exporter:   exporter,
		rankCutoff: rankCutoff,
	}
}

// Build replaces the date's matrix and exports it.
// Calendar errors abort before anything is written.
func (a *Aggregator) Build(ctx context.Context, date time.Time) (int, error) {
	window, err := a.calendar.Window(ctx, date, trx.WindowDays, calendar.Descending)
	if err != nil {
		return 0, fmt.Errorf("resolve window: %w", err)
	}

	qualifying, err := a.netBuyRepo.ListQualifying(ctx, date, a.rankCutoff)
	if err != nil {
		return 0, fmt.Errorf("list candidates: %w", err)
	}

	rows := make(map[string]*trx.Matrix)
	var codes []string
	for _, rec := range qualifying {
		m, ok := rows[rec.StockCode]
		if !ok {
			m = &trx.Matrix{Date: date, StockCode: rec.StockCode, StockName: rec.StockName}
			rows[rec.StockCode] = m
			codes = append(codes, rec.StockCode)
		}

		rankAmt := 0
		if rec.RankAmt != nil {
			rankAmt = *rec.RankAmt
		}
		switch rec.Class {
		case netbuy.Institution:
			m.Institution[0] += rec.NetQty
			m.InstitutionRankAmt += rankAmt
		case netbuy.Foreigner:
			m.Foreigner[0] += rec.NetQty
			m.ForeignerRankAmt += rankAmt
		}
	}

	if len(codes) > 0 {
		prior, err := a.netBuyRepo.ListByDates(ctx, window[1:], codes)
		if err != nil {
			return 0, fmt.Errorf("list prior days: %w", err)
		}

		offset := make(map[string]int, len(window))
		for i, d := range window {
			offset[calendar.FormatDate(d)] = i
		}
		for _, rec := range prior {
			m, ok := rows[rec.StockCode]
			i, inWindow := offset[calendar.FormatDate(rec.Date)]
			if !ok || !inWindow || i == 0 {
				continue
			}
			switch rec.Class {
			case netbuy.Institution:
				m.Institution[i] += rec.NetQty
			case netbuy.Foreigner:
				m.Foreigner[i] += rec.NetQty
			}
		}
	} else {
		log.Warn().Str("date", calendar.FormatDate(date)).Msg("No ranked net-buy records, matrix will be empty")
	}

	sort.Strings(codes)
	matrix := make([]trx.Matrix, len(codes))
	for i, code := range codes {
		matrix[i] = *rows[code]
	}

	n, err := a.matrixRepo.Replace(ctx, date, matrix)
	if err != nil {
		return 0, fmt.Errorf("replace matrix: %w", err)
	}

	log.Info().
		Str("date", calendar.FormatDate(date)).
		Str("window_from", calendar.FormatDate(window[len(window)-1])).
		Int("rows", n).
		Msg("Transaction matrix built")

	if _, err := a.exporter.Write(export.FileName(MatrixExportPrefix, date), matrixSheet(matrix)); err != nil {
		return n, fmt.Errorf("export matrix: %w", err)
	}
	return n, nil
}

func matrixSheet(rows []trx.Matrix) export.Sheet {
	header := []string{"trade_date", "stock_code", "stock_name", "inst_rank_amt", "fore_rank_amt"}
	for i := 1; i <= trx.WindowDays; i++ {
		header = append(header, fmt.Sprintf("inst_d%d", i))
	}
	for i := 1; i <= trx.WindowDays; i++ {
		header = append(header, fmt.Sprintf("fore_d%d", i))
	}

	out := make([][]any, len(rows))
	for i, m := range rows {
		row := []any{calendar.FormatDate(m.Date), m.StockCode, m.StockName, m.InstitutionRankAmt, m.ForeignerRankAmt}
		for _, v := range m.Institution {
			row = append(row, v)
		}
		for _, v := range m.Foreigner {
			row = append(row, v)
		}
		out[i] = row
	}
	return export.Sheet{Name: MatrixExportPrefix, Header: header, Rows: out}
}
