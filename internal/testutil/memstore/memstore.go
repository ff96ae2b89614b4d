// Package memstore provides in-memory repositories for service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/market"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/domain/price"
	"github.com/wonny/krxflow/internal/domain/trx"
	"github.com/wonny/krxflow/internal/infra/export"
)

// Date parses YYYYMMDD or panics
func Date(s string) time.Time {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func inDates(d time.Time, dates []time.Time) bool {
	for _, x := range dates {
		if x.Equal(d) {
			return true
		}
	}
	return false
}

// =============================================================================
// Calendar
// =============================================================================

// Calendar calendar.Repository
type Calendar struct {
	mu   sync.Mutex
	days map[string][]calendar.TradingDay
}

// NewCalendar seeds the stock calendar with the given dates
func NewCalendar(dates ...time.Time) *Calendar {
	c := &Calendar{days: make(map[string][]calendar.TradingDay)}
	c.days[calendar.ClassificationStock] = calendar.BuildDays(calendar.ClassificationStock, dates)
	return c
}

func (c *Calendar) GetSequence(ctx context.Context, classification string, date time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.days[classification] {
		if d.Date.Equal(date) {
			return d.Sequence, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", calendar.FormatDate(date), calendar.ErrNotFound)
}

func (c *Calendar) ListBySequence(ctx context.Context, classification string, from, to int) ([]calendar.TradingDay, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []calendar.TradingDay
	for _, d := range c.days[classification] {
		if d.Sequence >= from && d.Sequence <= to {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *Calendar) ListBetween(ctx context.Context, classification string, from, to time.Time) ([]calendar.TradingDay, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []calendar.TradingDay
	for _, d := range c.days[classification] {
		if !d.Date.Before(from) && !d.Date.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *Calendar) ReplaceAll(ctx context.Context, classification string, days []calendar.TradingDay) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days[classification] = append([]calendar.TradingDay(nil), days...)
	return len(days), nil
}

// Days 저장된 영업일
func (c *Calendar) Days() []calendar.TradingDay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]calendar.TradingDay(nil), c.days[calendar.ClassificationStock]...)
}

// =============================================================================
// NetBuy
// =============================================================================

// NetBuy netbuy.Repository
type NetBuy struct {
	mu      sync.Mutex
	records []netbuy.Record
}

func NewNetBuy(records ...netbuy.Record) *NetBuy {
	return &NetBuy{records: append([]netbuy.Record(nil), records...)}
}

func (n *NetBuy) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.records[:0]
	var deleted int64
	for _, r := range n.records {
		if r.Date.Equal(date) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	n.records = kept
	return deleted, nil
}

func (n *NetBuy) InsertBatch(ctx context.Context, records []netbuy.Record) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, rec := range records {
		replaced := false
		for i, r := range n.records {
			if r.Date.Equal(rec.Date) && r.Class == rec.Class && r.StockCode == rec.StockCode {
				n.records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			n.records = append(n.records, rec)
		}
	}
	return len(records), nil
}

func (n *NetBuy) UpdateRanks(ctx context.Context, date time.Time, class netbuy.InvestorClass) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var idx []int
	for i, r := range n.records {
		if r.Date.Equal(date) && r.Class == class {
			idx = append(idx, i)
		}
	}

	qtyRank := denseRank(idx, func(i int) int64 { return n.records[i].NetQty })
	amtRank := denseRank(idx, func(i int) int64 { return n.records[i].NetAmt })
	for _, i := range idx {
		q, a := qtyRank[i], amtRank[i]
		n.records[i].RankQty = &q
		n.records[i].RankAmt = &a
	}
	return nil
}

// denseRank 내림차순 dense rank
func denseRank(idx []int, value func(int) int64) map[int]int {
	distinct := make(map[int64]struct{})
	for _, i := range idx {
		distinct[value(i)] = struct{}{}
	}
	values := make([]int64, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Slice(values, func(a, b int) bool { return values[a] > values[b] })

	rankOf := make(map[int64]int, len(values))
	for r, v := range values {
		rankOf[v] = r + 1
	}
	ranks := make(map[int]int, len(idx))
	for _, i := range idx {
		ranks[i] = rankOf[value(i)]
	}
	return ranks
}

func (n *NetBuy) ListQualifying(ctx context.Context, date time.Time, cutoff int) ([]netbuy.Record, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []netbuy.Record
	for _, r := range n.records {
		if r.Date.Equal(date) && r.Qualifies(cutoff) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (n *NetBuy) ListByDates(ctx context.Context, dates []time.Time, codes []string) ([]netbuy.Record, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}
	var out []netbuy.Record
	for _, r := range n.records {
		if wanted[r.StockCode] && inDates(r.Date, dates) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (n *NetBuy) SumRankAmounts(ctx context.Context, date time.Time) (map[string]netbuy.RankAmounts, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]netbuy.RankAmounts)
	for _, r := range n.records {
		if !r.Date.Equal(date) {
			continue
		}
		sum := out[r.StockCode]
		rank := 0
		if r.RankAmt != nil {
			rank = *r.RankAmt
		}
		switch r.Class {
		case netbuy.Institution:
			sum.Institution += rank
		case netbuy.Foreigner:
			sum.Foreigner += rank
		}
		out[r.StockCode] = sum
	}
	return out, nil
}

// Records 저장된 레코드 (기준일)
func (n *NetBuy) Records(date time.Time) []netbuy.Record {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []netbuy.Record
	for _, r := range n.records {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out
}

func sortRecords(rs []netbuy.Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Date.Equal(rs[j].Date) {
			return rs[i].Date.Before(rs[j].Date)
		}
		if rs[i].StockCode != rs[j].StockCode {
			return rs[i].StockCode < rs[j].StockCode
		}
		return rs[i].Class < rs[j].Class
	})
}

// =============================================================================
// Price
// =============================================================================

// Price price.Repository + price.IndexRepository
type Price struct {
	mu      sync.Mutex
	prices  []price.DailyPrice
	indexes map[string]price.TechnicalIndex
}

func NewPrice(prices ...price.DailyPrice) *Price {
	return &Price{
		prices:  append([]price.DailyPrice(nil), prices...),
		indexes: make(map[string]price.TechnicalIndex),
	}
}

func (p *Price) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.prices[:0]
	var deleted int64
	for _, r := range p.prices {
		if r.Date.Equal(date) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	p.prices = kept
	return deleted, nil
}

func (p *Price) InsertBatch(ctx context.Context, prices []price.DailyPrice) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices = append(p.prices, prices...)
	return len(prices), nil
}

func (p *Price) ListBetween(ctx context.Context, from, to time.Time) ([]price.DailyPrice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []price.DailyPrice
	for _, r := range p.prices {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StockCode != out[j].StockCode {
			return out[i].StockCode < out[j].StockCode
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (p *Price) ChangeRates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]decimal.Decimal)
	for _, r := range p.prices {
		if r.Date.Equal(date) {
			out[r.StockCode] = r.ChangeRate
		}
	}
	return out, nil
}

func (p *Price) UpsertBatch(ctx context.Context, indexes []price.TechnicalIndex) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, idx := range indexes {
		p.indexes[indexKey(idx.Date, idx.StockCode)] = idx
	}
	return len(indexes), nil
}

// Index 저장된 기술 지표
func (p *Price) Index(date time.Time, code string) (price.TechnicalIndex, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.indexes[indexKey(date, code)]
	return idx, ok
}

// Prices 저장된 시세 (기준일)
func (p *Price) Prices(date time.Time) []price.DailyPrice {
	out, _ := p.ListBetween(context.Background(), date, date)
	return out
}

func indexKey(date time.Time, code string) string {
	return calendar.FormatDate(date) + "/" + code
}

// =============================================================================
// Matrix / Summary
// =============================================================================

// Matrix trx.MatrixRepository
type Matrix struct {
	mu           sync.Mutex
	rows         map[string][]trx.Matrix
	ReplaceCalls int
}

func NewMatrix(rows ...trx.Matrix) *Matrix {
	m := &Matrix{rows: make(map[string][]trx.Matrix)}
	for _, r := range rows {
		key := calendar.FormatDate(r.Date)
		m.rows[key] = append(m.rows[key], r)
	}
	return m
}

func (m *Matrix) Replace(ctx context.Context, date time.Time, rows []trx.Matrix) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls++
	m.rows[calendar.FormatDate(date)] = append([]trx.Matrix(nil), rows...)
	return len(rows), nil
}

func (m *Matrix) ListByDate(ctx context.Context, date time.Time) ([]trx.Matrix, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]trx.Matrix(nil), m.rows[calendar.FormatDate(date)]...)
	sort.Slice(out, func(i, j int) bool { return out[i].StockCode < out[j].StockCode })
	return out, nil
}

func (m *Matrix) CountAppearances(ctx context.Context, date time.Time) ([]trx.Appearance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := calendar.FormatDate(date)
	counts := make(map[string]*trx.Appearance)
	for key, rows := range m.rows {
		if key > ref {
			continue
		}
		for _, r := range rows {
			a, ok := counts[r.StockCode]
			if !ok {
				a = &trx.Appearance{StockCode: r.StockCode, StockName: r.StockName}
				counts[r.StockCode] = a
			}
			a.Count++
		}
	}
	out := make([]trx.Appearance, 0, len(counts))
	for _, a := range counts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].StockCode < out[j].StockCode
	})
	return out, nil
}

// Summary trx.SummaryRepository. ListReport joins indexes from Prices when set.
type Summary struct {
	mu     sync.Mutex
	rows   map[string][]trx.Summary
	Prices *Price
}

func NewSummary(rows ...trx.Summary) *Summary {
	s := &Summary{rows: make(map[string][]trx.Summary)}
	for _, r := range rows {
		key := calendar.FormatDate(r.Date)
		s.rows[key] = append(s.rows[key], r)
	}
	return s
}

func (s *Summary) Replace(ctx context.Context, date time.Time, rows []trx.Summary) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[calendar.FormatDate(date)] = append([]trx.Summary(nil), rows...)
	return len(rows), nil
}

func (s *Summary) ListByDate(ctx context.Context, date time.Time) ([]trx.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]trx.Summary(nil), s.rows[calendar.FormatDate(date)]...)
	sort.Slice(out, func(i, j int) bool { return out[i].StockCode < out[j].StockCode })
	return out, nil
}

func (s *Summary) ApplyGrades(ctx context.Context, date time.Time, updates []trx.GradeUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[calendar.FormatDate(date)]
	n := 0
	for _, u := range updates {
		for i := range rows {
			if rows[i].StockCode != u.StockCode {
				continue
			}
			rows[i].InstitutionRankAmt = u.InstitutionRankAmt
			rows[i].ForeignerRankAmt = u.ForeignerRankAmt
			rows[i].ChangeRate = u.ChangeRate
			rows[i].Grade = u.Grade
			n++
		}
	}
	return n, nil
}

func (s *Summary) ListReport(ctx context.Context, date time.Time) ([]trx.ReportRow, error) {
	s.mu.Lock()
	rows := append([]trx.Summary(nil), s.rows[calendar.FormatDate(date)]...)
	s.mu.Unlock()

	out := make([]trx.ReportRow, len(rows))
	for i, r := range rows {
		out[i] = trx.ReportRow{Summary: r}
		if s.Prices == nil {
			continue
		}
		if idx, ok := s.Prices.Index(date, r.StockCode); ok {
			rsi, obv := idx.RSI, idx.OBV
			out[i].RSI = &rsi
			out[i].OBV = &obv
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Grade != out[j].Grade {
			return out[i].Grade < out[j].Grade
		}
		return out[i].StockName < out[j].StockName
	})
	return out, nil
}

// =============================================================================
// Market
// =============================================================================

// Market market.Repository
type Market struct {
	mu        sync.Mutex
	Summaries map[string]market.Summary
	Featured  map[string][]market.FeaturedStock
}

func NewMarket() *Market {
	return &Market{
		Summaries: make(map[string]market.Summary),
		Featured:  make(map[string][]market.FeaturedStock),
	}
}

func (m *Market) UpsertSummary(ctx context.Context, summary market.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summaries[calendar.FormatDate(summary.Date)] = summary
	return nil
}

func (m *Market) ReplaceFeatured(ctx context.Context, date time.Time, stocks []market.FeaturedStock) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Featured[calendar.FormatDate(date)] = append([]market.FeaturedStock(nil), stocks...)
	return len(stocks), nil
}

// =============================================================================
// Stage runs / Exporter
// =============================================================================

// StageRuns fetcher.StageRunRepository
type StageRuns struct {
	mu   sync.Mutex
	runs []*fetcher.StageRun
}

func NewStageRuns() *StageRuns {
	return &StageRuns{}
}

func (s *StageRuns) Create(ctx context.Context, run *fetcher.StageRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs = append(s.runs, &cp)
	return nil
}

func (s *StageRuns) Update(ctx context.Context, run *fetcher.StageRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.runs {
		if r.RunID == run.RunID {
			cp := *run
			s.runs[i] = &cp
			return nil
		}
	}
	return fetcher.ErrRunNotFound
}

func (s *StageRuns) GetByID(ctx context.Context, runID uuid.UUID) (*fetcher.StageRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs {
		if r.RunID == runID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fetcher.ErrRunNotFound
}

func (s *StageRuns) ListByDate(ctx context.Context, date time.Time) ([]*fetcher.StageRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fetcher.StageRun
	for _, r := range s.runs {
		if r.BaseDate.Equal(date) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// All 기록된 전체 실행 이력 (기록 순)
func (s *StageRuns) All() []fetcher.StageRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fetcher.StageRun, len(s.runs))
	for i, r := range s.runs {
		out[i] = *r
	}
	return out
}

// Exporter export.Exporter, 파일명별 시트 보관
type Exporter struct {
	mu    sync.Mutex
	Files map[string][]export.Sheet
}

func NewExporter() *Exporter {
	return &Exporter{Files: make(map[string][]export.Sheet)}
}

func (e *Exporter) Write(filename string, sheets ...export.Sheet) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Files[filename] = sheets
	return filename, nil
}
