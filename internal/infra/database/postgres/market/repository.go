package market

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wonny/krxflow/internal/domain/market"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// Repository PostgreSQL 시장 요약 저장소
type Repository struct {
	pool *postgres.Pool
}

// NewRepository 저장소 생성
func NewRepository(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertSummary 기준일 지수 요약 저장
func (r *Repository) UpsertSummary(ctx context.Context, s market.Summary) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO market.market_summary (
			trade_date,
			kospi, kospi_change, kospi_rate,
			kosdaq, kosdaq_change, kosdaq_rate,
			kospi200, kospi200_change, kospi200_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (trade_date) DO UPDATE SET
			kospi = EXCLUDED.kospi,
			kospi_change = EXCLUDED.kospi_change,
			kospi_rate = EXCLUDED.kospi_rate,
			kosdaq = EXCLUDED.kosdaq,
			kosdaq_change = EXCLUDED.kosdaq_change,
			kosdaq_rate = EXCLUDED.kosdaq_rate,
			kospi200 = EXCLUDED.kospi200,
			kospi200_change = EXCLUDED.kospi200_change,
			kospi200_rate = EXCLUDED.kospi200_rate,
			collected_at = NOW()
	`,
		s.Date,
		s.KOSPI.Value, s.KOSPI.Change, s.KOSPI.Rate,
		s.KOSDAQ.Value, s.KOSDAQ.Change, s.KOSDAQ.Rate,
		s.KOSPI200.Value, s.KOSPI200.Change, s.KOSPI200.Rate,
	)
	if err != nil {
		return fmt.Errorf("upsert market summary: %w", err)
	}
	return nil
}

// ReplaceFeatured 기준일 상한가 목록 교체 (단일 트랜잭션)
func (r *Repository) ReplaceFeatured(ctx context.Context, date time.Time, stocks []market.FeaturedStock) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM market.featured_stock WHERE trade_date = $1`, date); err != nil {
		return 0, fmt.Errorf("delete featured stocks: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"market", "featured_stock"},
		[]string{"trade_date", "seq", "stock_name", "price", "change_price", "change_rate"},
		pgx.CopyFromSlice(len(stocks), func(i int) ([]any, error) {
			s := stocks[i]
			return []any{date, s.Seq, s.StockName, s.Price, s.Change, s.ChangeRate}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy featured stocks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return int(n), nil
}
