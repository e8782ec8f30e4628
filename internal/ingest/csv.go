package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"windplant_qc/internal/frame"
)

// CSVParser parses one CSV source table according to its schema.
//
// Unparsable rows (bad timestamp or malformed numeric) are skipped and
// counted in Skipped; the rest of the table proceeds. A missing required
// column is a SchemaError and fails the whole stream.
type CSVParser struct {
	Stream string
	Schema Schema

	// Skipped is the number of rows dropped by the last Parse call.
	Skipped int
}

func NewCSVParser(stream string, schema Schema) *CSVParser {
	return &CSVParser{Stream: stream, Schema: schema}
}

func (p *CSVParser) Parse(r io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	// Field counts vary between exports; short records read as empty cells.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	idx, err := resolveHeader(p.Stream, p.Schema, header)
	if err != nil {
		return nil, err
	}

	f := frame.New()
	p.Skipped = 0
	lineNum := 1 // header was line 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		row, err := rowFromRecord(p.Schema, idx, record)
		if err != nil {
			p.Skipped++
			continue
		}
		f.Append(row)
	}

	return f, nil
}
