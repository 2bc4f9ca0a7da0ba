package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/docmind/core"
)

// csvExtractor joins each record with pipes, one record per line.
// Ragged rows are tolerated; a record that cannot be parsed at all is
// reported as a warning and skipped.
type csvExtractor struct{}

func (e *csvExtractor) Extract(raw []byte) (*Result, error) {
	rd := csv.NewReader(bytes.NewReader(raw))
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true

	var (
		out      strings.Builder
		breaks   []int
		warnings []string
		line     int
	)
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("record %d: %v", line, err))
			continue
		}
		if rowEmpty(record) {
			continue
		}
		if out.Len() > 0 {
			breaks = append(breaks, out.Len())
		}
		out.WriteString(strings.Join(record, " | "))
		out.WriteByte('\n')
	}
	if out.Len() == 0 && len(warnings) > 0 {
		return nil, fmt.Errorf("%w: no parseable csv records", core.ErrExtractionFailed)
	}
	return &Result{Text: out.String(), Breaks: breaks, Warnings: warnings}, nil
}
