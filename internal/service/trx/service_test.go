package trx

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/domain/price"
	"github.com/wonny/krxflow/internal/domain/trx"
	calendarsvc "github.com/wonny/krxflow/internal/service/calendar"
	"github.com/wonny/krxflow/internal/testutil/memstore"
)

var d = memstore.Date

func rank(v int) *int { return &v }

type fixture struct {
	netBuy   *memstore.NetBuy
	matrix   *memstore.Matrix
	summary  *memstore.Summary
	prices   *memstore.Price
	exporter *memstore.Exporter

	aggregator *Aggregator
	summarizer *Summarizer
	grader     *Grader
}

func newFixture() *fixture {
	cal := memstore.NewCalendar(
		d("20250325"), d("20250326"), d("20250327"), d("20250328"),
		d("20250331"), d("20250401"), d("20250402"), d("20250403"), d("20250404"),
	)

	ref := d("20250404")
	netBuy := memstore.NewNetBuy(
		// 005930: 기관 D1=100, D2=50
		netbuy.Record{Date: ref, Class: netbuy.Institution, StockCode: "005930", StockName: "삼성전자", NetQty: 100, RankQty: rank(1), RankAmt: rank(1)},
		netbuy.Record{Date: d("20250403"), Class: netbuy.Institution, StockCode: "005930", StockName: "삼성전자", NetQty: 50, RankQty: rank(2), RankAmt: rank(2)},

		// 000660: 기관만 순위권, 외국인 D1 행은 순위 밖
		netbuy.Record{Date: ref, Class: netbuy.Institution, StockCode: "000660", StockName: "SK하이닉스", NetQty: -10, RankQty: rank(40), RankAmt: rank(3)},
		netbuy.Record{Date: ref, Class: netbuy.Foreigner, StockCode: "000660", StockName: "SK하이닉스", NetQty: 20, RankQty: rank(70), RankAmt: rank(60)},
		netbuy.Record{Date: d("20250327"), Class: netbuy.Foreigner, StockCode: "000660", StockName: "SK하이닉스", NetQty: 30},
		netbuy.Record{Date: d("20250326"), Class: netbuy.Foreigner, StockCode: "000660", StockName: "SK하이닉스", NetQty: 999},

		// 035720: 순위 밖
		netbuy.Record{Date: ref, Class: netbuy.Foreigner, StockCode: "035720", StockName: "카카오", NetQty: 500, RankQty: rank(51), RankAmt: rank(51)},
	)

	prices := memstore.NewPrice(price.DailyPrice{
		Date: ref, StockCode: "005930", StockName: "삼성전자", ChangeRate: decimal.RequireFromString("1.5"),
	})
	_, _ = prices.UpsertBatch(context.Background(), []price.TechnicalIndex{{
		Date: ref, StockCode: "005930", StockName: "삼성전자", RSI: decimal.RequireFromString("66.6667"), OBV: 1200,
	}})

	matrix := memstore.NewMatrix()
	summary := memstore.NewSummary()
	summary.Prices = prices
	exporter := memstore.NewExporter()

	return &fixture{
		netBuy:     netBuy,
		matrix:     matrix,
		summary:    summary,
		prices:     prices,
		exporter:   exporter,
		aggregator: NewAggregator(calendarsvc.NewResolver(cal), netBuy, matrix, exporter, 51),
		summarizer: NewSummarizer(matrix, summary, trx.PolicyCount),
		grader:     NewGrader(netBuy, prices, summary, matrix, exporter),
	}
}

func TestAggregator_Build(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ref := d("20250404")

	n, err := f.aggregator.Build(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := f.matrix.ListByDate(ctx, ref)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	hynix, samsung := rows[0], rows[1]

	assert.Equal(t, "005930", samsung.StockCode)
	assert.Equal(t, [7]int64{100, 50, 0, 0, 0, 0, 0}, samsung.Institution)
	assert.Equal(t, [7]int64{}, samsung.Foreigner)
	assert.Equal(t, 1, samsung.InstitutionRankAmt)

	assert.Equal(t, "000660", hynix.StockCode)
	assert.Equal(t, [7]int64{-10, 0, 0, 0, 0, 0, 0}, hynix.Institution)
	// 순위 밖 외국인 D1 행은 합산되지 않는다
	assert.Equal(t, [7]int64{0, 0, 0, 0, 0, 0, 30}, hynix.Foreigner)
	assert.Equal(t, 3, hynix.InstitutionRankAmt)
	assert.Equal(t, 0, hynix.ForeignerRankAmt)

	sheets := f.exporter.Files["transaction_matrix_20250404.xlsx"]
	require.Len(t, sheets, 1)
	assert.Len(t, sheets[0].Rows, 2)
	assert.Len(t, sheets[0].Header, 5+2*trx.WindowDays)
}

func TestAggregator_BuildIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ref := d("20250404")

	_, err := f.aggregator.Build(ctx, ref)
	require.NoError(t, err)
	first, _ := f.matrix.ListByDate(ctx, ref)

	_, err = f.aggregator.Build(ctx, ref)
	require.NoError(t, err)
	second, _ := f.matrix.ListByDate(ctx, ref)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, f.matrix.ReplaceCalls)
}

func TestAggregator_InsufficientHistoryWritesNothing(t *testing.T) {
	f := newFixture()

	_, err := f.aggregator.Build(context.Background(), d("20250328"))
	assert.ErrorIs(t, err, calendar.ErrInsufficientHistory)
	assert.Zero(t, f.matrix.ReplaceCalls)
	assert.Empty(t, f.exporter.Files)

	_, err = f.aggregator.Build(context.Background(), d("20250405"))
	assert.ErrorIs(t, err, calendar.ErrNotFound)
	assert.Zero(t, f.matrix.ReplaceCalls)
}

func TestPipeline_SummaryAndGrade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ref := d("20250404")

	_, err := f.aggregator.Build(ctx, ref)
	require.NoError(t, err)

	n, err := f.summarizer.Run(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.grader.Run(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := f.summary.ListByDate(ctx, ref)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	samsung := rows[1]
	assert.Equal(t, "005930", samsung.StockCode)
	assert.Equal(t, 2, samsung.InstitutionPositiveDays)
	assert.Equal(t, 2, samsung.CombinedRecent)
	assert.Equal(t, "75", samsung.AvgPositiveVolume.String())
	assert.Equal(t, int64(100), samsung.Day1Volume)
	assert.Equal(t, "1.3", samsung.Day1ToAvgRatio.String())
	assert.Equal(t, trx.GradeB, samsung.Grade)
	require.NotNil(t, samsung.ChangeRate)
	assert.Equal(t, "1.5", samsung.ChangeRate.String())

	hynix := rows[0]
	assert.Equal(t, "-0.3", hynix.Day1ToAvgRatio.String())
	assert.Equal(t, 3, hynix.InstitutionRankAmt)
	// 등급 단계는 기준일 전체 레코드의 순위를 합산한다
	assert.Equal(t, 60, hynix.ForeignerRankAmt)
	assert.Nil(t, hynix.ChangeRate)
	assert.Equal(t, trx.GradeB, hynix.Grade)

	report := f.exporter.Files["transaction_summary_20250404.xlsx"]
	require.Len(t, report, 1)
	require.Len(t, report[0].Rows, 2)
	assert.Equal(t, "000660", report[0].Rows[0][1])
	assert.Equal(t, "", report[0].Rows[0][15])
	assert.Equal(t, 66.6667, report[0].Rows[1][15])
	assert.Equal(t, int64(1200), report[0].Rows[1][16])

	analysis := f.exporter.Files["stock_trx_analysis_20250404.xlsx"]
	require.Len(t, analysis, 1)
	assert.Len(t, analysis[0].Rows, 2)
}

func TestSummarizer_EmptyMatrix(t *testing.T) {
	f := newFixture()

	n, err := f.summarizer.Run(context.Background(), d("20250404"))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.grader.Run(context.Background(), d("20250404"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.exporter.Files)
}

func TestSummarizer_StreakPolicy(t *testing.T) {
	ref := d("20250404")
	matrix := memstore.NewMatrix(trx.Matrix{
		Date:        ref,
		StockCode:   "005930",
		Institution: [7]int64{5, 3},
		Foreigner:   [7]int64{0, 7},
	})
	summary := memstore.NewSummary()

	_, err := NewSummarizer(matrix, summary, trx.PolicyStreak).Run(context.Background(), ref)
	require.NoError(t, err)

	rows, _ := summary.ListByDate(context.Background(), ref)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].CombinedRecent)
	assert.True(t, rows[0].Date.Equal(ref))
}
