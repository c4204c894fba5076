package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docmap/internal/doctree"
)

// csvBatchRows is how many data rows go into one section.
const csvBatchRows = 20

// CSVParser handles CSV files. The first row is treated as headers and
// each data row is written as "header: value" pairs.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Outline, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := doctree.NewBuilder()
	if len(records) == 0 {
		return b.Outline(baseTitle(filename)), nil
	}

	headers, rows := records[0], records[1:]
	for start := 0; start < len(rows); start += csvBatchRows {
		end := min(start+csvBatchRows, len(rows))
		b.Heading(1, fmt.Sprintf("Rows %d-%d", start+2, end+1))

		var lines []string
		for _, row := range rows[start:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) && headers[j] != "" {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			lines = append(lines, strings.Join(cells, ", "))
		}
		b.Text(strings.Join(lines, "\n"))
	}
	return b.Outline(baseTitle(filename)), nil
}
