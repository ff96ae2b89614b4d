package price

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/wonny/krxflow/internal/domain/price"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// Repository PostgreSQL 일별 시세 저장소 (market.daily_price)
type Repository struct {
	pool *postgres.Pool
}

// NewRepository 저장소 생성
func NewRepository(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

var priceColumns = []string{
	"trade_date", "stock_code", "stock_name", "market",
	"close_price", "change_price", "change_rate",
	"open_price", "high_price", "low_price",
	"volume", "amount", "market_cap", "shares",
}

// DeleteByDate 기준일 시세 삭제
func (r *Repository) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM market.daily_price WHERE trade_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete daily price: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatch COPY 로 일괄 저장
func (r *Repository) InsertBatch(ctx context.Context, prices []price.DailyPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"market", "daily_price"},
		priceColumns,
		pgx.CopyFromSlice(len(prices), func(i int) ([]any, error) {
			p := prices[i]
			return []any{
				p.Date, p.StockCode, p.StockName, string(p.Market),
				p.Close, p.Change, p.ChangeRate,
				p.Open, p.High, p.Low,
				p.Volume, p.Amount, p.MarketCap, p.Shares,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy daily price: %w", err)
	}

	return int(n), nil
}

// ListBetween 기간 전 종목 시세 (종목코드, 날짜 오름차순)
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]price.DailyPrice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT trade_date, stock_code, stock_name, market,
		       close_price, change_price, change_rate,
		       open_price, high_price, low_price,
		       volume, amount, market_cap, shares
		FROM market.daily_price
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY stock_code, trade_date
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily price: %w", err)
	}
	defer rows.Close()

	var prices []price.DailyPrice
	for rows.Next() {
		var (
			p   price.DailyPrice
			mkt string
		)
		if err := rows.Scan(
			&p.Date, &p.StockCode, &p.StockName, &mkt,
			&p.Close, &p.Change, &p.ChangeRate,
			&p.Open, &p.High, &p.Low,
			&p.Volume, &p.Amount, &p.MarketCap, &p.Shares,
		); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		p.Market = price.Market(mkt)
		prices = append(prices, p)
	}

	return prices, rows.Err()
}

// ChangeRates 기준일 종목별 등락률
func (r *Repository) ChangeRates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT stock_code, change_rate
		FROM market.daily_price
		WHERE trade_date = $1
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query change rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			code string
			rate decimal.Decimal
		)
		if err := rows.Scan(&code, &rate); err != nil {
			return nil, fmt.Errorf("scan change rate: %w", err)
		}
		rates[code] = rate
	}

	return rates, rows.Err()
}

// IndexRepository PostgreSQL 기술 지표 저장소 (analysis.technical_index)
type IndexRepository struct {
	pool *postgres.Pool
}

// NewIndexRepository 저장소 생성
func NewIndexRepository(pool *postgres.Pool) *IndexRepository {
	return &IndexRepository{pool: pool}
}

// UpsertBatch (date, stock_code) 기준 upsert
func (r *IndexRepository) UpsertBatch(ctx context.Context, indexes []price.TechnicalIndex) (int, error) {
	if len(indexes) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analysis.technical_index
			(trade_date, stock_code, stock_name, close_price, rsi, obv)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (trade_date, stock_code) DO UPDATE SET
			stock_name = EXCLUDED.stock_name,
			close_price = EXCLUDED.close_price,
			rsi = EXCLUDED.rsi,
			obv = EXCLUDED.obv,
			updated_at = NOW()
	`

	for _, idx := range indexes {
		batch.Queue(query, idx.Date, idx.StockCode, idx.StockName, idx.Close, idx.RSI, idx.OBV)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range indexes {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert technical index: %w", err)
		}
		count++
	}

	return count, nil
}
