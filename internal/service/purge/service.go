package purge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
)

// Repository 기준일 재적재 대상 삭제
type Repository interface {
	PurgeDate(ctx context.Context, date time.Time) (map[string]int64, error)
}

// Service 기준일 초기화
type Service struct {
	repo Repository
}

// NewService 서비스 생성
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Run 시세/순매수/매트릭스/요약 삭제
func (s *Service) Run(ctx context.Context, date time.Time) (int, error) {
	deleted, err := s.repo.PurgeDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", calendar.FormatDate(date), err)
	}

	tables := make([]string, 0, len(deleted))
	for table := range deleted {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var total int64
	event := log.Info().Str("date", calendar.FormatDate(date))
	for _, table := range tables {
		event = event.Int64(table, deleted[table])
		total += deleted[table]
	}
	event.Int64("total", total).Msg("Purged base date")

	return int(total), nil
}
