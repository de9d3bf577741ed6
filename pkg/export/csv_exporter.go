package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM keeps Excel from decoding accented subject and program names as
// Latin-1 when the download is opened directly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset is tabular schedule content: header labels plus one map per exam
// row, keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// record materializes one row in header order. A sparse exam row yields empty
// cells instead of shifting its neighbours.
func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}

// CSVExporter renders schedule datasets into CSV downloads.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces the CSV bytes for one schedule dataset, BOM included.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
