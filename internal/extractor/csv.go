package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor handles CSV files. Rows are rendered as labeled
// header/value lines and grouped into batches so large tables produce
// multiple segments. Page is always 0.
type CSVExtractor struct{}

// csvBatchSize is the number of data rows per segment.
const csvBatchSize = 20

func (p *CSVExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := &builder{}
	if len(records) == 0 {
		return &Result{Segments: b.segs, TotalPages: pageCount(b.segs)}, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", "))
		for _, row := range batch {
			text.WriteString("\n")
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
			}
		}

		// 1-indexed source rows, skipping the header row.
		heading := fmt.Sprintf("Rows %d-%d", i+2, end+1)
		b.addHeading(text.String(), 0, heading, 1)
	}

	return &Result{Segments: b.segs, TotalPages: pageCount(b.segs)}, nil
}
