package trx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/krxflow/internal/domain/trx"
)

func TestMaxStreak(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   int
	}{
		{"middle run", []int64{1, 1, -1, 1, 1, 1, -1}, 3},
		{"trailing run", []int64{-1, 1, 1, 1, 1}, 4},
		{"all positive", []int64{1, 2, 3, 4, 5, 6, 7}, 7},
		{"zero breaks run", []int64{1, 0, 1, 1}, 2},
		{"none", []int64{0, -1, 0}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxStreak(tt.values))
		})
	}
}

func TestPositiveCount(t *testing.T) {
	assert.Equal(t, 4, PositiveCount([]int64{1, 1, -1, 1, 0, 1, -1}))
	assert.Equal(t, 0, PositiveCount(nil))
}

func TestCombinedRecent(t *testing.T) {
	m := trx.Matrix{
		Institution: [7]int64{5, 3, -1},
		Foreigner:   [7]int64{0, 7},
	}

	assert.Equal(t, 3, CombinedRecent(m, trx.PolicyCount))
	assert.Equal(t, 2, CombinedRecent(m, trx.PolicyStreak))

	m.Foreigner[0] = 1
	assert.Equal(t, 4, CombinedRecent(m, trx.PolicyCount))
	assert.Equal(t, 4, CombinedRecent(m, trx.PolicyStreak))
}

func TestAveragePositiveVolume(t *testing.T) {
	m := trx.Matrix{
		Institution: [7]int64{100, 50, -20},
		Foreigner:   [7]int64{0, 0, 0, 0, 0, 0, 30},
	}
	assert.Equal(t, "60", AveragePositiveVolume(m).String())

	assert.True(t, AveragePositiveVolume(trx.Matrix{}).IsZero())
}

func TestDay1ToAvgRatio(t *testing.T) {
	tests := []struct {
		day1 int64
		avg  string
		want string
	}{
		{100, "75", "1.3"},
		{150, "75", "2"},
		{1, "4", "0.2"},  // 0.25 half-even
		{7, "20", "0.4"}, // 0.35 half-even
		{-10, "30", "-0.3"},
		{100, "0", "0"},
		{100, "-5", "0"},
	}

	for _, tt := range tests {
		got := Day1ToAvgRatio(tt.day1, decimal.RequireFromString(tt.avg))
		assert.Equal(t, tt.want, got.String(), "%d/%s", tt.day1, tt.avg)
	}
}

func TestSummarize(t *testing.T) {
	m := trx.Matrix{
		StockCode:          "005930",
		StockName:          "삼성전자",
		InstitutionRankAmt: 1,
		Institution:        [7]int64{100, 50},
	}

	s := Summarize(m, trx.PolicyCount)
	assert.Equal(t, "005930", s.StockCode)
	assert.Equal(t, 2, s.InstitutionPositiveDays)
	assert.Equal(t, 2, s.InstitutionMaxStreak)
	assert.Equal(t, 0, s.ForeignerPositiveDays)
	assert.Equal(t, 0, s.ForeignerMaxStreak)
	assert.Equal(t, 2, s.CombinedRecent)
	assert.Equal(t, "75", s.AvgPositiveVolume.String())
	assert.Equal(t, int64(100), s.Day1Volume)
	assert.Equal(t, "1.3", s.Day1ToAvgRatio.String())
	assert.Equal(t, 1, s.InstitutionRankAmt)
	assert.Equal(t, trx.Grade(""), s.Grade)
}

func TestGrade(t *testing.T) {
	ratio := decimal.RequireFromString

	tests := []struct {
		name string
		s    trx.Summary
		want trx.Grade
	}{
		{"streak with ratio", trx.Summary{CombinedRecent: 3, Day1ToAvgRatio: ratio("1.4")}, trx.GradeS},
		{"ratio boundary is exclusive", trx.Summary{CombinedRecent: 4, Day1ToAvgRatio: ratio("1.3")}, trx.GradeB},
		{"ratio alone", trx.Summary{Day1ToAvgRatio: ratio("2")}, trx.GradeS},
		{"S wins over A", trx.Summary{InstitutionPositiveDays: 7, ForeignerPositiveDays: 7, Day1ToAvgRatio: ratio("2.5")}, trx.GradeS},
		{"positive days", trx.Summary{InstitutionPositiveDays: 6, ForeignerPositiveDays: 4, Day1ToAvgRatio: ratio("1.9")}, trx.GradeA},
		{"default", trx.Summary{InstitutionPositiveDays: 5, ForeignerPositiveDays: 4}, trx.GradeB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.s))
		})
	}
}
