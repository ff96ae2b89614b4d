package trx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/trx"
)

// Summarizer 매트릭스 → 연속 매수 요약
type Summarizer struct {
	matrixRepo  trx.MatrixRepository
	summaryRepo trx.SummaryRepository
	policy      trx.StreakPolicy
}

// NewSummarizer 생성
func NewSummarizer(matrixRepo trx.MatrixRepository, summaryRepo trx.SummaryRepository, policy trx.StreakPolicy) *Summarizer {
	return &Summarizer{matrixRepo: matrixRepo, summaryRepo: summaryRepo, policy: policy}
}

// Run rebuilds the date's summary rows. An empty matrix is a warning, not an error.
func (s *Summarizer) Run(ctx context.Context, date time.Time) (int, error) {
	rows, err := s.matrixRepo.ListByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list matrix: %w", err)
	}
	if len(rows) == 0 {
		log.Warn().Str("date", calendar.FormatDate(date)).Msg("No matrix rows, summary skipped")
		return 0, nil
	}

	summaries := make([]trx.Summary, len(rows))
	for i, m := range rows {
		summaries[i] = Summarize(m, s.policy)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].StockCode < summaries[j].StockCode })

	n, err := s.summaryRepo.Replace(ctx, date, summaries)
	if err != nil {
		return 0, fmt.Errorf("replace summary: %w", err)
	}

	log.Info().
		Str("date", calendar.FormatDate(date)).
		Str("policy", string(s.policy)).
		Int("rows", n).
		Msg("Transaction summary calculated")

	return n, nil
}
