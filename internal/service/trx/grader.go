package trx

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/domain/price"
	"github.com/wonny/krxflow/internal/domain/trx"
	"github.com/wonny/krxflow/internal/infra/export"
)

const (
	SummaryExportPrefix  = "transaction_summary"
	AnalysisExportPrefix = "stock_trx_analysis"
)

// Grader 순위 합/등락률/등급 갱신 + 리포트 export
type Grader struct {
	netBuyRepo  netbuy.Repository
	priceRepo   price.Repository
	summaryRepo trx.SummaryRepository
	matrixRepo  trx.MatrixRepository
	exporter    export.Exporter
}

// NewGrader 생성
func NewGrader(
	netBuyRepo netbuy.Repository,
	priceRepo price.Repository,
	summaryRepo trx.SummaryRepository,
	matrixRepo trx.MatrixRepository,
	exporter export.Exporter,
) *Grader {
	return &Grader{
		netBuyRepo:  netBuyRepo,
		priceRepo:   priceRepo,
		summaryRepo: summaryRepo,
		matrixRepo:  matrixRepo,
		exporter:    exporter,
	}
}

// Run grades the date's summary rows and writes both report files
func (g *Grader) Run(ctx context.Context, date time.Time) (int, error) {
	summaries, err := g.summaryRepo.ListByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list summary: %w", err)
	}
	if len(summaries) == 0 {
		log.Warn().Str("date", calendar.FormatDate(date)).Msg("No summary rows, grading skipped")
		return 0, nil
	}

	ranks, err := g.netBuyRepo.SumRankAmounts(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("sum rank amounts: %w", err)
	}
	rates, err := g.priceRepo.ChangeRates(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("load change rates: %w", err)
	}

	counts := make(map[trx.Grade]int, 3)
	updates := make([]trx.GradeUpdate, len(summaries))
	for i, s := range summaries {
		r := ranks[s.StockCode]
		u := trx.GradeUpdate{
			StockCode:          s.StockCode,
			InstitutionRankAmt: r.Institution,
			ForeignerRankAmt:   r.Foreigner,
			Grade:              Grade(s),
		}
		if rate, ok := rates[s.StockCode]; ok {
			u.ChangeRate = &rate
		}
		updates[i] = u
		counts[u.Grade]++
	}

	n, err := g.summaryRepo.ApplyGrades(ctx, date, updates)
	if err != nil {
		return 0, fmt.Errorf("apply grades: %w", err)
	}

	log.Info().
		Str("date", calendar.FormatDate(date)).
		Int("rows", n).
		Int("grade_s", counts[trx.GradeS]).
		Int("grade_a", counts[trx.GradeA]).
		Int("grade_b", counts[trx.GradeB]).
		Msg("Summary graded")

	if err := g.exportReports(ctx, date); err != nil {
		return n, err
	}
	return n, nil
}

func (g *Grader) exportReports(ctx context.Context, date time.Time) error {
	report, err := g.summaryRepo.ListReport(ctx, date)
	if err != nil {
		return fmt.Errorf("list report: %w", err)
	}

	rows := make([][]any, len(report))
	for i, r := range report {
		rows[i] = []any{
			calendar.FormatDate(r.Date), r.StockCode, r.StockName,
			r.InstitutionPositiveDays, r.InstitutionMaxStreak,
			r.ForeignerPositiveDays, r.ForeignerMaxStreak,
			r.CombinedRecent, export.Decimal(r.AvgPositiveVolume), r.Day1Volume,
			export.Decimal(r.Day1ToAvgRatio), r.InstitutionRankAmt, r.ForeignerRankAmt,
			export.OptionalDecimal(r.ChangeRate), string(r.Grade),
			export.OptionalDecimal(r.RSI), export.OptionalInt(r.OBV),
		}
	}
	if _, err := g.exporter.Write(export.FileName(SummaryExportPrefix, date), export.Sheet{
		Name: SummaryExportPrefix,
		Header: []string{
			"trade_date", "stock_code", "stock_name",
			"inst_pos_cnt", "inst_max_con", "fore_pos_cnt", "fore_max_con",
			"buy_con_cnt", "avg_volume", "d1_volume", "ratio",
			"inst_rank_amt", "fore_rank_amt", "change_rate", "grade", "rsi", "obv",
		},
		Rows: rows,
	}); err != nil {
		return fmt.Errorf("export summary: %w", err)
	}

	appearances, err := g.matrixRepo.CountAppearances(ctx, date)
	if err != nil {
		return fmt.Errorf("count appearances: %w", err)
	}
	rows = make([][]any, len(appearances))
	for i, a := range appearances {
		rows[i] = []any{a.StockCode, a.StockName, a.Count}
	}
	if _, err := g.exporter.Write(export.FileName(AnalysisExportPrefix, date), export.Sheet{
		Name:   AnalysisExportPrefix,
		Header: []string{"stock_code", "stock_name", "count"},
		Rows:   rows,
	}); err != nil {
		return fmt.Errorf("export analysis: %w", err)
	}
	return nil
}
