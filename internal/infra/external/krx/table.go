package krx

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/wonny/krxflow/internal/domain/fetcher"
)

// table 헤더 이름으로 접근하는 CSV
type table struct {
	index   map[string]int
	rows    [][]string
	invalid map[string]int // 숫자 변환 실패 셀 수 (컬럼별)
}

func parseTable(text string) (*table, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", fetcher.ErrInvalidResponse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header: %w", fetcher.ErrEmptyPayload)
	}

	t := &table{index: make(map[string]int, len(records[0]))}
	for i, name := range records[0] {
		t.index[strings.TrimSpace(name)] = i
	}
	for _, rec := range records[1:] {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// require 필수 컬럼 확인
func (t *table) require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %v", fetcher.ErrInvalidResponse, missing)
	}
	return nil
}

func (t *table) str(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// integer 콤마 제거 후 정수 변환, 빈 값/'-' 는 0
func (t *table) integer(row []string, column string) int64 {
	d := t.decimal(row, column)
	return d.IntPart()
}

func (t *table) decimal(row []string, column string) decimal.Decimal {
	s := strings.ReplaceAll(t.str(row, column), ",", "")
	if s == "" || s == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Debug().Str("column", column).Str("value", s).Msg("Invalid numeric cell, stored as 0")
		if t.invalid == nil {
			t.invalid = make(map[string]int)
		}
		t.invalid[column]++
		return decimal.Zero
	}
	return d
}

// warnInvalid 숫자 변환 실패 셀이 있으면 컬럼별 건수를 WARN 으로 남긴다
func (t *table) warnInvalid(dataset string) {
	if len(t.invalid) == 0 {
		return
	}
	total := 0
	for _, n := range t.invalid {
		total += n
	}
	log.Warn().
		Str("dataset", dataset).
		Int("cells", total).
		Interface("columns", t.invalid).
		Msg("Malformed numeric cells stored as 0")
}
