package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVContentType is the MIME type served with CSV downloads.
const CSVContentType = "text/csv; charset=utf-8"

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	useCRLF     bool
	omitLastEOL bool
}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithCRLF terminates records with \r\n instead of \n.
func WithCRLF() CSVOption {
	return func(e *CSVExporter) { e.useCRLF = true }
}

// WithoutFinalNewline drops the terminator after the last record, so records
// are separated rather than terminated.
func WithoutFinalNewline() CSVOption {
	return func(e *CSVExporter) { e.omitLastEOL = true }
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	writer.UseCRLF = e.useCRLF
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	out := buf.Bytes()
	if e.omitLastEOL {
		eol := "\n"
		if e.useCRLF {
			eol = "\r\n"
		}
		out = bytes.TrimSuffix(out, []byte(eol))
	}
	return out, nil
}
