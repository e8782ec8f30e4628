// Package ingest loads raw stream tables (SCADA exports, revenue meter
// logs, curtailment records, reanalysis products) into frames. Each source
// declares its own schema: timestamp column and layout, optional device
// column, and the value columns to carry through.
package ingest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"windplant_qc/internal/frame"
)

// Schema describes the raw layout of one source table.
type Schema struct {
	// TimeColumn is the raw header name of the timestamp column.
	TimeColumn string
	// TimeLayout is the Go reference layout of the timestamp strings,
	// e.g. "2006-01-02 15:04:05" or "20060102 1504".
	TimeLayout string
	// DeviceColumn names the device identifier column. Empty for
	// single-device streams such as meter or reanalysis data.
	DeviceColumn string
	// Columns maps raw header names to the column names the frame will
	// carry. Every listed column must be present in the header.
	Columns map[string]string
}

// SchemaError reports a required column missing from an input table.
// It is fatal for the stream; there is no point retrying the same file.
type SchemaError struct {
	Stream string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ingest: stream %q: required column %q not found in header", e.Stream, e.Column)
}

// Parser reads one raw source table into a frame.
type Parser interface {
	Parse(r io.Reader) (*frame.Frame, error)
}

// columnIndex holds resolved header positions for a schema.
type columnIndex struct {
	time    int
	device  int // -1 when the schema has no device column
	metrics map[string]int
}

func resolveHeader(stream string, schema Schema, header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}

	idx := columnIndex{device: -1, metrics: make(map[string]int, len(schema.Columns))}

	ti, ok := pos[schema.TimeColumn]
	if !ok {
		return idx, &SchemaError{Stream: stream, Column: schema.TimeColumn}
	}
	idx.time = ti

	if schema.DeviceColumn != "" {
		di, ok := pos[schema.DeviceColumn]
		if !ok {
			return idx, &SchemaError{Stream: stream, Column: schema.DeviceColumn}
		}
		idx.device = di
	}

	for raw, name := range schema.Columns {
		ci, ok := pos[raw]
		if !ok {
			return idx, &SchemaError{Stream: stream, Column: raw}
		}
		idx.metrics[name] = ci
	}
	return idx, nil
}

// rowFromRecord converts one raw record into a frame row. Timestamp parse
// failure fails the row; a malformed numeric value fails the row too, so a
// partially corrupt record never enters the pipeline. Empty cells are
// missing values (NaN), not errors.
func rowFromRecord(schema Schema, idx columnIndex, record []string) (frame.Row, error) {
	ts, err := time.Parse(schema.TimeLayout, strings.TrimSpace(cell(record, idx.time)))
	if err != nil {
		return frame.Row{}, fmt.Errorf("parsing timestamp %q: %w", cell(record, idx.time), err)
	}

	row := frame.Row{Time: ts, Values: make(map[string]float64, len(idx.metrics))}
	if idx.device >= 0 {
		row.Device = strings.TrimSpace(cell(record, idx.device))
	}

	for name, ci := range idx.metrics {
		raw := strings.TrimSpace(cell(record, ci))
		if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "na") {
			row.Values[name] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return frame.Row{}, fmt.Errorf("parsing value %q for column %q: %w", raw, name, err)
		}
		row.Values[name] = v
	}
	return row, nil
}

// cell returns record[i], or "" when the record is short. Spreadsheet
// exports routinely omit trailing empty cells.
func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
