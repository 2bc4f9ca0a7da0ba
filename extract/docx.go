package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/docmind/core"
)

// docxExtractor reads word/document.xml out of the zip container and
// flattens paragraphs, tabs and breaks into plain text. Table cells
// come out as paragraphs in document order.
type docxExtractor struct{}

func (e *docxExtractor) Extract(raw []byte) (*Result, error) {
	r, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx container: %v", core.ErrExtractionFailed, err)
	}

	var docXML io.ReadCloser
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: opening word/document.xml: %v", core.ErrExtractionFailed, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: docx is missing word/document.xml", core.ErrExtractionFailed)
	}
	defer docXML.Close()

	text, err := flattenWordXML(docXML)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text}, nil
}

// flattenWordXML walks WordprocessingML and emits the text runs. Only
// the handful of elements that affect plain-text layout matter here.
func flattenWordXML(r io.Reader) (string, error) {
	var (
		out    strings.Builder
		dec    = xml.NewDecoder(r)
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed document xml: %v", core.ErrExtractionFailed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			case "tc":
				// cell boundary inside a table row
				out.WriteByte('\t')
			case "tr":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String(), nil
}
