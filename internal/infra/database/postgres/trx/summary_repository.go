package trx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/wonny/krxflow/internal/domain/trx"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// SummaryRepository PostgreSQL 요약 저장소 (analysis.transaction_summary)
type SummaryRepository struct {
	pool *postgres.Pool
}

// NewSummaryRepository 저장소 생성
func NewSummaryRepository(pool *postgres.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

const summarySelect = `
	s.trade_date, s.stock_code, s.stock_name,
	s.inst_pos_cnt, s.inst_max_con, s.fore_pos_cnt, s.fore_max_con, s.buy_con_cnt,
	s.avg_volume, s.d1_volume, s.ratio,
	s.inst_rank_amt, s.fore_rank_amt, s.change_rate, s.grade
`

// Replace 기준일 삭제 후 저장 (단일 트랜잭션)
func (r *SummaryRepository) Replace(ctx context.Context, date time.Time, rows []trx.Summary) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM analysis.transaction_summary WHERE trade_date = $1`, date); err != nil {
		return 0, fmt.Errorf("delete summary: %w", err)
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analysis.transaction_summary (
			trade_date, stock_code, stock_name,
			inst_pos_cnt, inst_max_con, fore_pos_cnt, fore_max_con, buy_con_cnt,
			avg_volume, d1_volume, ratio,
			inst_rank_amt, fore_rank_amt, change_rate, grade
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for _, s := range rows {
		batch.Queue(query,
			date, s.StockCode, s.StockName,
			s.InstitutionPositiveDays, s.InstitutionMaxStreak,
			s.ForeignerPositiveDays, s.ForeignerMaxStreak, s.CombinedRecent,
			s.AvgPositiveVolume, s.Day1Volume, s.Day1ToAvgRatio,
			s.InstitutionRankAmt, s.ForeignerRankAmt,
			nullableDecimal(s.ChangeRate), nullableGrade(s.Grade),
		)
	}

	if len(rows) > 0 {
		if err := sendBatch(ctx, tx, batch, len(rows), "insert summary"); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(rows), nil
}

// ListByDate 기준일 요약
func (r *SummaryRepository) ListByDate(ctx context.Context, date time.Time) ([]trx.Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+summarySelect+`
		FROM analysis.transaction_summary s
		WHERE s.trade_date = $1
		ORDER BY s.stock_code
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var result []trx.Summary
	for rows.Next() {
		var s trx.Summary
		var changeRate decimal.NullDecimal
		var grade *string
		if err := rows.Scan(summaryDest(&s, &changeRate, &grade)...); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		applyNullable(&s, changeRate, grade)
		result = append(result, s)
	}

	return result, rows.Err()
}

// ApplyGrades 순위/등락률/등급 갱신 (단일 트랜잭션)
func (r *SummaryRepository) ApplyGrades(ctx context.Context, date time.Time, updates []trx.GradeUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := `
		UPDATE analysis.transaction_summary
		SET inst_rank_amt = $3,
		    fore_rank_amt = $4,
		    change_rate = $5,
		    grade = $6
		WHERE trade_date = $1 AND stock_code = $2
	`
	for _, u := range updates {
		batch.Queue(query,
			date, u.StockCode,
			u.InstitutionRankAmt, u.ForeignerRankAmt,
			nullableDecimal(u.ChangeRate), nullableGrade(u.Grade),
		)
	}

	if err := sendBatch(ctx, tx, batch, len(updates), "update grade"); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(updates), nil
}

// ListReport 요약 + RSI/OBV (지표 없는 종목 포함), 등급, 종목명 순
func (r *SummaryRepository) ListReport(ctx context.Context, date time.Time) ([]trx.ReportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+summarySelect+`, t.rsi, t.obv
		FROM analysis.transaction_summary s
		LEFT JOIN analysis.technical_index t
		       ON t.trade_date = s.trade_date
		      AND t.stock_code = s.stock_code
		WHERE s.trade_date = $1
		ORDER BY s.grade, s.stock_name
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	defer rows.Close()

	var result []trx.ReportRow
	for rows.Next() {
		var (
			row        trx.ReportRow
			changeRate decimal.NullDecimal
			grade      *string
			rsi        decimal.NullDecimal
			obv        *int64
		)
		dest := append(summaryDest(&row.Summary, &changeRate, &grade), &rsi, &obv)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		applyNullable(&row.Summary, changeRate, grade)
		if rsi.Valid {
			v := rsi.Decimal
			row.RSI = &v
		}
		row.OBV = obv
		result = append(result, row)
	}

	return result, rows.Err()
}

func summaryDest(s *trx.Summary, changeRate *decimal.NullDecimal, grade **string) []any {
	return []any{
		&s.Date, &s.StockCode, &s.StockName,
		&s.InstitutionPositiveDays, &s.InstitutionMaxStreak,
		&s.ForeignerPositiveDays, &s.ForeignerMaxStreak, &s.CombinedRecent,
		&s.AvgPositiveVolume, &s.Day1Volume, &s.Day1ToAvgRatio,
		&s.InstitutionRankAmt, &s.ForeignerRankAmt,
		changeRate, grade,
	}
}

func applyNullable(s *trx.Summary, changeRate decimal.NullDecimal, grade *string) {
	if changeRate.Valid {
		v := changeRate.Decimal
		s.ChangeRate = &v
	}
	if grade != nil {
		s.Grade = trx.Grade(*grade)
	}
}

func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullableGrade(g trx.Grade) *string {
	if g == "" {
		return nil
	}
	s := string(g)
	return &s
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, n int, op string) error {
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch %s: %w", op, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch %s: %w", op, err)
	}
	return nil
}
