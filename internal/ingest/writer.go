package ingest

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"windplant_qc/internal/frame"
	"windplant_qc/internal/model"
)

// WriteCSV writes a normalized frame as CSV: time, id, then the frame's
// value columns in sorted order. NaN values are written as empty cells.
func WriteCSV(w io.Writer, f *frame.Frame, timeLayout string) error {
	cw := csv.NewWriter(w)

	columns := f.Columns()
	header := append([]string{model.FieldTime, model.FieldDevice}, columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, r := range f.Rows() {
		record[0] = r.Time.Format(timeLayout)
		record[1] = r.Device
		for i, c := range columns {
			v, ok := r.Values[c]
			if !ok || math.IsNaN(v) {
				record[2+i] = ""
				continue
			}
			record[2+i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
