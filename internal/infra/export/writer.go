package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet 엑셀 시트 (헤더 + 행)
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Exporter 시트 묶음을 파일 하나로 저장
type Exporter interface {
	Write(filename string, sheets ...Sheet) (string, error)
}

// Writer writes review spreadsheets under a fixed directory
type Writer struct {
	dir string
}

// NewWriter 출력 디렉터리 지정
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FileName prefix_YYYYMMDD.xlsx
func FileName(prefix string, date time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, date.Format("20060102"))
}

// Write saves the sheets into dir/filename, overwriting any previous file
func (w *Writer) Write(filename string, sheets ...Sheet) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("export %s: no sheets", filename)
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	rows := 0
	for i, sheet := range sheets {
		name := sanitizeSheetName(sheet.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return "", fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("new sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, sheet); err != nil {
			return "", fmt.Errorf("write sheet %s: %w", name, err)
		}
		rows += len(sheet.Rows)
	}

	path := filepath.Join(w.dir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	log.Info().
		Str("file", path).
		Int("sheets", len(sheets)).
		Int("rows", rows).
		Msg("Exported spreadsheet")

	return path, nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// Decimal 엑셀 숫자 셀 값
func Decimal(d decimal.Decimal) any {
	return d.InexactFloat64()
}

// OptionalDecimal nil 이면 빈 셀
func OptionalDecimal(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}

// OptionalInt nil 이면 빈 셀
func OptionalInt(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func sanitizeSheetName(name string) string {
	for _, ch := range []string{"/", "\\", "*", "?", "[", "]", ":"} {
		name = strings.ReplaceAll(name, ch, " ")
	}
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		name = "Sheet1"
	}
	return name
}
