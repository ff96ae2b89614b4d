package trx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wonny/krxflow/internal/domain/trx"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// MatrixRepository PostgreSQL 매트릭스 저장소 (analysis.transaction_matrix)
type MatrixRepository struct {
	pool *postgres.Pool
}

// NewMatrixRepository 저장소 생성
func NewMatrixRepository(pool *postgres.Pool) *MatrixRepository {
	return &MatrixRepository{pool: pool}
}

var matrixColumns = []string{
	"trade_date", "stock_code", "stock_name", "inst_rank_amt", "fore_rank_amt",
	"inst_d1", "inst_d2", "inst_d3", "inst_d4", "inst_d5", "inst_d6", "inst_d7",
	"fore_d1", "fore_d2", "fore_d3", "fore_d4", "fore_d5", "fore_d6", "fore_d7",
}

// Replace 기준일 삭제 후 저장 (단일 트랜잭션)
func (r *MatrixRepository) Replace(ctx context.Context, date time.Time, rows []trx.Matrix) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleted, err := tx.Exec(ctx, `DELETE FROM analysis.transaction_matrix WHERE trade_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete matrix: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"analysis", "transaction_matrix"},
		matrixColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			m := rows[i]
			values := make([]any, 0, len(matrixColumns))
			values = append(values, date, m.StockCode, m.StockName, m.InstitutionRankAmt, m.ForeignerRankAmt)
			for _, v := range m.Institution {
				values = append(values, v)
			}
			for _, v := range m.Foreigner {
				values = append(values, v)
			}
			return values, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy matrix: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	log.Debug().
		Int64("deleted", deleted.RowsAffected()).
		Int64("inserted", n).
		Msg("Replaced transaction matrix")

	return int(n), nil
}

// ListByDate 기준일 매트릭스
func (r *MatrixRepository) ListByDate(ctx context.Context, date time.Time) ([]trx.Matrix, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT trade_date, stock_code, stock_name, inst_rank_amt, fore_rank_amt,
		       inst_d1, inst_d2, inst_d3, inst_d4, inst_d5, inst_d6, inst_d7,
		       fore_d1, fore_d2, fore_d3, fore_d4, fore_d5, fore_d6, fore_d7
		FROM analysis.transaction_matrix
		WHERE trade_date = $1
		ORDER BY stock_code
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query matrix: %w", err)
	}
	defer rows.Close()

	var matrix []trx.Matrix
	for rows.Next() {
		var m trx.Matrix
		dest := []any{&m.Date, &m.StockCode, &m.StockName, &m.InstitutionRankAmt, &m.ForeignerRankAmt}
		for i := range m.Institution {
			dest = append(dest, &m.Institution[i])
		}
		for i := range m.Foreigner {
			dest = append(dest, &m.Foreigner[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan matrix: %w", err)
		}
		matrix = append(matrix, m)
	}

	return matrix, rows.Err()
}

// CountAppearances 기준일 이하 종목별 매트릭스 등장 횟수
func (r *MatrixRepository) CountAppearances(ctx context.Context, date time.Time) ([]trx.Appearance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT stock_code, MAX(stock_name), COUNT(*)
		FROM analysis.transaction_matrix
		WHERE trade_date <= $1
		GROUP BY stock_code
		ORDER BY COUNT(*) DESC, stock_code
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query appearances: %w", err)
	}
	defer rows.Close()

	var result []trx.Appearance
	for rows.Next() {
		var (
			a   trx.Appearance
			cnt int64
		)
		if err := rows.Scan(&a.StockCode, &a.StockName, &cnt); err != nil {
			return nil, fmt.Errorf("scan appearance: %w", err)
		}
		a.Count = int(cnt)
		result = append(result, a)
	}

	return result, rows.Err()
}
