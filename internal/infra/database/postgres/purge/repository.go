package purge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// tables 기준일 단위로 재적재되는 테이블 (삭제 순서)
var tables = []string{
	"analysis.transaction_summary",
	"analysis.transaction_matrix",
	"market.net_buy_record",
	"market.daily_price",
}

// Repository 기준일 초기화
type Repository struct {
	pool *postgres.Pool
}

// NewRepository 저장소 생성
func NewRepository(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

// PurgeDate 기준일 시세/순매수/매트릭스/요약 삭제 (단일 트랜잭션)
func (r *Repository) PurgeDate(ctx context.Context, date time.Time) (map[string]int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleted := make(map[string]int64, len(tables))
	for _, table := range tables {
		// 테이블명은 고정 목록에서만 온다
		tag, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE trade_date = $1`, date)
		if err != nil {
			return nil, fmt.Errorf("purge %s: %w", table, err)
		}
		deleted[table] = tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Debug().Interface("deleted", deleted).Msg("Purged date")
	return deleted, nil
}
