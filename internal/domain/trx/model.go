package trx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WindowDays 매트릭스 영업일 수 (D1 = 기준일, D7 = 6영업일 전)
const WindowDays = 7

// Matrix 7영업일 순매수 수량 매트릭스 (analysis.transaction_matrix)
type Matrix struct {
	Date               time.Time
	StockCode          string
	StockName          string
	InstitutionRankAmt int
	ForeignerRankAmt   int
	Institution        [WindowDays]int64 // [0] = D1
	Foreigner          [WindowDays]int64
}

// Grade 수급 등급
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
)

// StreakPolicy buy_con_cnt 산출 방식
type StreakPolicy string

const (
	// PolicyCount {D1 기관, D2 기관, D1 외국인, D2 외국인} 중 양수 개수
	PolicyCount StreakPolicy = "count"
	// PolicyStreak 같은 4개 값의 최대 연속 양수 길이
	PolicyStreak StreakPolicy = "streak"
)

// ParseStreakPolicy validates a configured policy name
func ParseStreakPolicy(s string) (StreakPolicy, error) {
	switch p := StreakPolicy(s); p {
	case PolicyCount, PolicyStreak:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Summary 연속 매수 요약 (analysis.transaction_summary)
type Summary struct {
	Date                    time.Time
	StockCode               string
	StockName               string
	InstitutionPositiveDays int
	InstitutionMaxStreak    int
	ForeignerPositiveDays   int
	ForeignerMaxStreak      int
	CombinedRecent          int
	AvgPositiveVolume       decimal.Decimal
	Day1Volume              int64
	Day1ToAvgRatio          decimal.Decimal
	InstitutionRankAmt      int
	ForeignerRankAmt        int
	ChangeRate              *decimal.Decimal // 시세 없으면 nil
	Grade                   Grade            // 등급 갱신 전 ""
}

// GradeUpdate 순위/등락률/등급 갱신값
type GradeUpdate struct {
	StockCode          string
	InstitutionRankAmt int
	ForeignerRankAmt   int
	ChangeRate         *decimal.Decimal
	Grade              Grade
}

// Appearance 종목별 매트릭스 등장 횟수
type Appearance struct {
	StockCode string
	StockName string
	Count     int
}

// ReportRow 요약 + 기술 지표 (지표 없으면 nil)
type ReportRow struct {
	Summary
	RSI *decimal.Decimal
	OBV *int64
}
