package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docmind/core"
)

// legacyDocExtractor covers the pre-2007 binary Word format. The OLE
// stream layout is not worth reimplementing; users get a pointer to
// the conversion path instead.
type legacyDocExtractor struct{}

func (e *legacyDocExtractor) Extract(raw []byte) (*Result, error) {
	return nil, fmt.Errorf("%w: legacy .doc files are not supported, convert to .docx and re-upload", core.ErrExtractionFailed)
}

// legacyXLSExtractor salvages what it can from a binary Excel
// workbook by scanning for printable runs. BIFF cell strings are
// stored close to plain text, so keyword search over the salvage is
// usually still useful.
type legacyXLSExtractor struct {
	logger *slog.Logger
}

const minSalvageRun = 4

func (e *legacyXLSExtractor) Extract(raw []byte) (*Result, error) {
	var (
		out strings.Builder
		run []byte
	)
	flush := func() {
		if len(run) >= minSalvageRun {
			out.Write(run)
			out.WriteByte('\n')
		}
		run = run[:0]
	}
	for _, b := range raw {
		if b >= 0x20 && b < 0x7F {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()

	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: no salvageable text in legacy workbook, convert to .xlsx and re-upload", core.ErrExtractionFailed)
	}
	return &Result{
		Text:     out.String(),
		Warnings: []string{"legacy .xls salvage is best effort, convert to .xlsx for full fidelity"},
	}, nil
}
