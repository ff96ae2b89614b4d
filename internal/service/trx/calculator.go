package trx

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/krxflow/internal/domain/trx"
)

// PositiveCount 양수 값 개수
func PositiveCount(values []int64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}

// MaxStreak 최대 연속 양수 길이 (마지막 구간 포함)
func MaxStreak(values []int64) int {
	longest, run := 0, 0
	for _, v := range values {
		if v > 0 {
			run++
			continue
		}
		longest = max(longest, run)
		run = 0
	}
	return max(longest, run)
}

// CombinedRecent D1/D2 기관·외국인 4개 값에 대한 연속 매수 지표
func CombinedRecent(m trx.Matrix, policy trx.StreakPolicy) int {
	recent := []int64{m.Institution[0], m.Institution[1], m.Foreigner[0], m.Foreigner[1]}
	if policy == trx.PolicyStreak {
		return MaxStreak(recent)
	}
	return PositiveCount(recent)
}

// AveragePositiveVolume 14개 값 중 양수의 평균, 없으면 0
func AveragePositiveVolume(m trx.Matrix) decimal.Decimal {
	var sum int64
	n := 0
	for _, series := range [][trx.WindowDays]int64{m.Institution, m.Foreigner} {
		for _, v := range series {
			if v > 0 {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n)))
}

// Day1Volume 기준일 기관 + 외국인 순매수 수량
func Day1Volume(m trx.Matrix) int64 {
	return m.Institution[0] + m.Foreigner[0]
}

// Day1ToAvgRatio day1/avg, 소수 1자리 banker's rounding. avg <= 0 이면 0.
func Day1ToAvgRatio(day1 int64, avg decimal.Decimal) decimal.Decimal {
	if !avg.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(day1).Div(avg).RoundBank(1)
}

// Summarize builds the summary row for one matrix row.
// Rank amounts, change rate and grade are filled later by the grader.
func Summarize(m trx.Matrix, policy trx.StreakPolicy) trx.Summary {
	avg := AveragePositiveVolume(m)
	day1 := Day1Volume(m)

	return trx.Summary{
		Date:                    m.Date,
		StockCode:               m.StockCode,
		StockName:               m.StockName,
		InstitutionPositiveDays: PositiveCount(m.Institution[:]),
		InstitutionMaxStreak:    MaxStreak(m.Institution[:]),
		ForeignerPositiveDays:   PositiveCount(m.Foreigner[:]),
		ForeignerMaxStreak:      MaxStreak(m.Foreigner[:]),
		CombinedRecent:          CombinedRecent(m, policy),
		AvgPositiveVolume:       avg.Round(4),
		Day1Volume:              day1,
		Day1ToAvgRatio:          Day1ToAvgRatio(day1, avg),
		InstitutionRankAmt:      m.InstitutionRankAmt,
		ForeignerRankAmt:        m.ForeignerRankAmt,
	}
}

var (
	gradeSRatio      = decimal.RequireFromString("1.3")
	gradeSRatioAlone = decimal.NewFromInt(2)
)

// Grade 등급 규칙, 먼저 만족하는 규칙이 적용된다
//
//	S: (combined >= 3 AND ratio > 1.3) OR ratio >= 2
//	A: 기관 + 외국인 양수 일수 >= 10
//	B: 그 외
func Grade(s trx.Summary) trx.Grade {
	ratio := s.Day1ToAvgRatio
	switch {
	case (s.CombinedRecent >= 3 && ratio.GreaterThan(gradeSRatio)) || ratio.GreaterThanOrEqual(gradeSRatioAlone):
		return trx.GradeS
	case s.InstitutionPositiveDays+s.ForeignerPositiveDays >= 10:
		return trx.GradeA
	default:
		return trx.GradeB
	}
}
