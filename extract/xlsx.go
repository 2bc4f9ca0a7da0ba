package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/poiesic/docmind/core"
	"github.com/xuri/excelize/v2"
)

// xlsxExtractor renders every sheet as pipe-delimited rows under a
// sheet heading so that tabular context survives into plain text.
type xlsxExtractor struct{}

func (e *xlsxExtractor) Extract(raw []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", core.ErrExtractionFailed, err)
	}
	defer f.Close()

	var (
		out      strings.Builder
		breaks   []int
		warnings []string
	)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}
		if out.Len() > 0 {
			breaks = append(breaks, out.Len())
		}
		fmt.Fprintf(&out, "Sheet: %s\n", sheet)
		for _, row := range rows {
			if rowEmpty(row) {
				continue
			}
			if out.Len() > 0 {
				breaks = append(breaks, out.Len())
			}
			out.WriteString(strings.Join(row, " | "))
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	return &Result{Text: out.String(), Breaks: breaks, Warnings: warnings}, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
