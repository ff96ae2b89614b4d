package netbuy

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// Repository PostgreSQL 순매수 저장소 (market.net_buy_record)
type Repository struct {
	pool *postgres.Pool
}

// NewRepository 저장소 생성
func NewRepository(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `
	trade_date, investor_class, stock_code, stock_name,
	sell_qty, buy_qty, net_qty, sell_amt, buy_amt, net_amt,
	rank_qty, rank_amt
`

// DeleteByDate 기준일 데이터 삭제
func (r *Repository) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM market.net_buy_record WHERE trade_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete net buy: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatch 순매수 일괄 저장
func (r *Repository) InsertBatch(ctx context.Context, records []netbuy.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO market.net_buy_record (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (trade_date, investor_class, stock_code) DO UPDATE SET
			stock_name = EXCLUDED.stock_name,
			sell_qty = EXCLUDED.sell_qty,
			buy_qty = EXCLUDED.buy_qty,
			net_qty = EXCLUDED.net_qty,
			sell_amt = EXCLUDED.sell_amt,
			buy_amt = EXCLUDED.buy_amt,
			net_amt = EXCLUDED.net_amt
	`

	for _, rec := range records {
		batch.Queue(query,
			rec.Date, string(rec.Class), rec.StockCode, rec.StockName,
			rec.SellQty, rec.BuyQty, rec.NetQty,
			rec.SellAmt, rec.BuyAmt, rec.NetAmt,
			rec.RankQty, rec.RankAmt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range records {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch insert net buy: %w", err)
		}
		count++
	}

	return count, nil
}

// UpdateRanks (date, class) 내 DENSE_RANK 갱신
func (r *Repository) UpdateRanks(ctx context.Context, date time.Time, class netbuy.InvestorClass) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE market.net_buy_record t
		SET rank_qty = rk.rnk_qty,
		    rank_amt = rk.rnk_amt
		FROM (
			SELECT stock_code,
			       DENSE_RANK() OVER (ORDER BY net_qty DESC) AS rnk_qty,
			       DENSE_RANK() OVER (ORDER BY net_amt DESC) AS rnk_amt
			FROM market.net_buy_record
			WHERE trade_date = $1 AND investor_class = $2
		) rk
		WHERE t.trade_date = $1
		  AND t.investor_class = $2
		  AND t.stock_code = rk.stock_code
	`, date, string(class))
	if err != nil {
		return fmt.Errorf("update net buy ranks: %w", err)
	}

	log.Debug().
		Str("class", string(class)).
		Int64("rows", tag.RowsAffected()).
		Msg("Updated net buy ranks")

	return nil
}

// ListQualifying 기준일 순위 컷 통과 레코드
func (r *Repository) ListQualifying(ctx context.Context, date time.Time, cutoff int) ([]netbuy.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM market.net_buy_record
		WHERE trade_date = $1
		  AND (rank_amt < $2 OR rank_qty < $2)
		ORDER BY stock_code, investor_class
	`, date, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query qualifying net buy: %w", err)
	}
	return collectRecords(rows)
}

// ListByDates 날짜/종목 목록 레코드
func (r *Repository) ListByDates(ctx context.Context, dates []time.Time, codes []string) ([]netbuy.Record, error) {
	if len(dates) == 0 || len(codes) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM market.net_buy_record
		WHERE trade_date = ANY($1::date[])
		  AND stock_code = ANY($2::text[])
		ORDER BY trade_date, stock_code, investor_class
	`, dates, codes)
	if err != nil {
		return nil, fmt.Errorf("query net buy by dates: %w", err)
	}
	return collectRecords(rows)
}

// SumRankAmounts 기준일 종목별 투자자 rank_amt 합 (없으면 0)
func (r *Repository) SumRankAmounts(ctx context.Context, date time.Time) (map[string]netbuy.RankAmounts, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT stock_code,
		       COALESCE(SUM(rank_amt) FILTER (WHERE investor_class = $2), 0),
		       COALESCE(SUM(rank_amt) FILTER (WHERE investor_class = $3), 0)
		FROM market.net_buy_record
		WHERE trade_date = $1
		GROUP BY stock_code
	`, date, string(netbuy.Institution), string(netbuy.Foreigner))
	if err != nil {
		return nil, fmt.Errorf("query rank amounts: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]netbuy.RankAmounts)
	for rows.Next() {
		var (
			code       string
			inst, fore int64
		)
		if err := rows.Scan(&code, &inst, &fore); err != nil {
			return nil, fmt.Errorf("scan rank amounts: %w", err)
		}
		sums[code] = netbuy.RankAmounts{Institution: int(inst), Foreigner: int(fore)}
	}

	return sums, rows.Err()
}

func collectRecords(rows pgx.Rows) ([]netbuy.Record, error) {
	defer rows.Close()

	var records []netbuy.Record
	for rows.Next() {
		var (
			rec   netbuy.Record
			class string
		)
		if err := rows.Scan(
			&rec.Date, &class, &rec.StockCode, &rec.StockName,
			&rec.SellQty, &rec.BuyQty, &rec.NetQty,
			&rec.SellAmt, &rec.BuyAmt, &rec.NetAmt,
			&rec.RankQty, &rec.RankAmt,
		); err != nil {
			return nil, fmt.Errorf("scan net buy: %w", err)
		}
		rec.Class = netbuy.InvestorClass(class)
		records = append(records, rec)
	}

	return records, rows.Err()
}
