package trx

import (
	"context"
	"time"
)

// MatrixRepository 매트릭스 저장소 (analysis.transaction_matrix)
type MatrixRepository interface {
	// Replace 기준일 삭제 후 일괄 저장 (단일 트랜잭션)
	Replace(ctx context.Context, date time.Time, rows []Matrix) (int, error)

	// ListByDate 기준일 매트릭스 (종목코드 오름차순)
	ListByDate(ctx context.Context, date time.Time) ([]Matrix, error)

	// CountAppearances 기준일 이하 종목별 등장 횟수 (횟수 내림차순)
	CountAppearances(ctx context.Context, date time.Time) ([]Appearance, error)
}

// SummaryRepository 요약 저장소 (analysis.transaction_summary)
type SummaryRepository interface {
	// Replace 기준일 삭제 후 일괄 저장 (단일 트랜잭션)
	Replace(ctx context.Context, date time.Time, rows []Summary) (int, error)

	// ListByDate 기준일 요약 (종목코드 오름차순)
	ListByDate(ctx context.Context, date time.Time) ([]Summary, error)

	// ApplyGrades 순위/등락률/등급 갱신 (단일 트랜잭션)
	ApplyGrades(ctx context.Context, date time.Time, updates []GradeUpdate) (int, error)

	// ListReport 요약 + RSI/OBV, 등급, 종목명 순
	ListReport(ctx context.Context, date time.Time) ([]ReportRow, error)
}
