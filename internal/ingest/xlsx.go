package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"windplant_qc/internal/frame"
)

// XLSXParser parses a spreadsheet source table. Field instruments and
// third-party providers commonly deliver data as Excel exports rather
// than CSV; the schema contract is identical.
type XLSXParser struct {
	Stream string
	Schema Schema
	// Sheet to read; the first sheet when empty.
	Sheet string

	// Skipped is the number of rows dropped by the last Parse call.
	Skipped int
}

func NewXLSXParser(stream string, schema Schema) *XLSXParser {
	return &XLSXParser{Stream: stream, Schema: schema}
}

func (p *XLSXParser) Parse(r io.Reader) (*frame.Frame, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer book.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	idx, err := resolveHeader(p.Stream, p.Schema, rows[0])
	if err != nil {
		return nil, err
	}

	f := frame.New()
	p.Skipped = 0
	for _, record := range rows[1:] {
		row, err := rowFromRecord(p.Schema, idx, record)
		if err != nil {
			p.Skipped++
			continue
		}
		f.Append(row)
	}

	return f, nil
}
