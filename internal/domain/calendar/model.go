package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout 기준일 표기 (YYYYMMDD)
const DateLayout = "20060102"

// ClassificationStock 주식 영업일 구분
const ClassificationStock = "stock"

// TradingDay 영업일 (market.trading_day)
type TradingDay struct {
	Classification string
	Date           time.Time
	Sequence       int // 1부터 날짜 오름차순으로 증가
	WorkYN         string
}

// Order 윈도우 정렬 방향
type Order int

const (
	Ascending Order = iota
	Descending
)

// ParseDate parses a YYYYMMDD trade date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats a trade date as YYYYMMDD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// BuildDays sorts and dedups the dates and assigns sequence 1..N
func BuildDays(classification string, dates []time.Time) []TradingDay {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	days := make([]TradingDay, 0, len(sorted))
	for _, d := range sorted {
		if n := len(days); n > 0 && days[n-1].Date.Equal(d) {
			continue
		}
		days = append(days, TradingDay{
			Classification: classification,
			Date:           d,
			Sequence:       len(days) + 1,
			WorkYN:         "Y",
		})
	}
	return days
}
