package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFileName(t *testing.T) {
	d := time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "transaction_summary_20250404.xlsx", FileName("transaction_summary", d))
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "out"))

	rate := decimal.RequireFromString("1.3")
	path, err := w.Write("report.xlsx",
		Sheet{
			Name:   "summary",
			Header: []string{"종목코드", "종목명", "비율", "등락률"},
			Rows: [][]any{
				{"005930", "삼성전자", Decimal(rate), OptionalDecimal(nil)},
				{"000660", "SK하이닉스", 2, OptionalDecimal(&rate)},
			},
		},
		Sheet{
			Name:   "count",
			Header: []string{"종목코드", "횟수"},
			Rows:   [][]any{{"005930", 3}},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "report.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "count"}, f.GetSheetList())

	rows, err := f.GetRows("summary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"종목코드", "종목명", "비율", "등락률"}, rows[0])
	assert.Equal(t, "005930", rows[1][0])
	assert.Equal(t, "1.3", rows[1][2])
	assert.Equal(t, "1.3", rows[2][3])

	rows, err = f.GetRows("count")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"종목코드", "횟수"}, {"005930", "3"}}, rows)
}

func TestWriter_NoSheets(t *testing.T) {
	_, err := NewWriter(t.TempDir()).Write("empty.xlsx")
	assert.Error(t, err)
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "a b", sanitizeSheetName("a/b"))
	assert.Equal(t, "Sheet1", sanitizeSheetName(" "))
}
