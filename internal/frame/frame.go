package frame

import (
	"math"
	"sort"
	"time"

	"windplant_qc/internal/model"
)

// Row is a single observation: a timestamp, an optional device identifier,
// and named numeric values. Missing values are either absent from the map
// or stored as NaN; both read back as NaN through Column.
type Row struct {
	Time   time.Time
	Device string
	Values map[string]float64
}

// Frame is an ordered collection of rows belonging to one data stream.
// All operations mutate the frame in place; the pipeline is one-shot and
// each frame is exclusively owned by its stream until merged.
type Frame struct {
	rows []Row
}

func New(rows ...Row) *Frame {
	return &Frame{rows: rows}
}

func (f *Frame) Len() int {
	return len(f.rows)
}

// Rows exposes the backing slice. Callers must not reorder it.
func (f *Frame) Rows() []Row {
	return f.rows
}

func (f *Frame) Append(rows ...Row) {
	f.rows = append(f.rows, rows...)
}

// SortByTime sorts rows ascending by timestamp. The sort is stable so rows
// from different devices at the same instant keep their relative order.
func (f *Frame) SortByTime() {
	sort.SliceStable(f.rows, func(i, j int) bool {
		return f.rows[i].Time.Before(f.rows[j].Time)
	})
}

// DedupPolicy selects how duplicate (timestamp, device) rows are resolved.
type DedupPolicy int

const (
	// KeepFirst keeps the first occurrence of each key and drops the rest.
	KeepFirst DedupPolicy = iota
	// DropAll removes every row whose key occurs more than once.
	DropAll
)

type rowKey struct {
	unix   int64
	device string
}

// Dedup removes duplicate rows keyed by (timestamp, device) according to
// the policy. Returns the number of rows removed.
func (f *Frame) Dedup(policy DedupPolicy) int {
	if len(f.rows) == 0 {
		return 0
	}

	counts := make(map[rowKey]int, len(f.rows))
	for _, r := range f.rows {
		counts[key(r)]++
	}

	seen := make(map[rowKey]bool)
	kept := f.rows[:0]
	for _, r := range f.rows {
		k := key(r)
		switch policy {
		case KeepFirst:
			if seen[k] {
				continue
			}
			seen[k] = true
		case DropAll:
			if counts[k] > 1 {
				continue
			}
		}
		kept = append(kept, r)
	}

	removed := len(f.rows) - len(kept)
	f.rows = kept
	return removed
}

func key(r Row) rowKey {
	return rowKey{unix: r.Time.UnixNano(), device: r.Device}
}

// Column returns the named values in row order, NaN where missing.
func (f *Frame) Column(name string) []float64 {
	out := make([]float64, len(f.rows))
	for i, r := range f.rows {
		v, ok := r.Values[name]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// SetColumn writes values back into the named column. len(values) must
// equal the row count.
func (f *Frame) SetColumn(name string, values []float64) {
	if len(values) != len(f.rows) {
		panic("frame: SetColumn length mismatch")
	}
	for i := range f.rows {
		if f.rows[i].Values == nil {
			f.rows[i].Values = make(map[string]float64, 1)
		}
		f.rows[i].Values[name] = values[i]
	}
}

// Keep retains only the rows where mask is true. len(mask) must equal the
// row count. Returns the number of rows removed.
func (f *Frame) Keep(mask []bool) int {
	if len(mask) != len(f.rows) {
		panic("frame: Keep length mismatch")
	}
	kept := f.rows[:0]
	for i, r := range f.rows {
		if mask[i] {
			kept = append(kept, r)
		}
	}
	removed := len(f.rows) - len(kept)
	f.rows = kept
	return removed
}

// DropNaN removes rows that have a NaN or missing value in any of the named
// columns, or in any column at all when none are named. Returns the number
// of rows removed.
func (f *Frame) DropNaN(columns ...string) int {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if rowComplete(r, columns) {
			kept = append(kept, r)
		}
	}
	removed := len(f.rows) - len(kept)
	f.rows = kept
	return removed
}

func rowComplete(r Row, columns []string) bool {
	if len(columns) == 0 {
		for _, v := range r.Values {
			if math.IsNaN(v) {
				return false
			}
		}
		return true
	}
	for _, c := range columns {
		v, ok := r.Values[c]
		if !ok || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Rename renames value columns. Names absent from the mapping are kept.
func (f *Frame) Rename(names map[string]string) {
	if len(names) == 0 {
		return
	}
	for i, r := range f.rows {
		renamed := make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			if nk, ok := names[k]; ok {
				k = nk
			}
			renamed[k] = v
		}
		f.rows[i].Values = renamed
	}
}

// Columns returns the set of column names present anywhere in the frame,
// sorted for stable output.
func (f *Frame) Columns() []string {
	set := make(map[string]bool)
	for _, r := range f.rows {
		for k := range r.Values {
			set[k] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TimeRange returns the covered time range, false when the frame is empty.
// Rows do not need to be sorted.
func (f *Frame) TimeRange() (model.TimeRange, bool) {
	if len(f.rows) == 0 {
		return model.TimeRange{}, false
	}
	tr := model.TimeRange{Start: f.rows[0].Time, End: f.rows[0].Time}
	for _, r := range f.rows[1:] {
		if r.Time.Before(tr.Start) {
			tr.Start = r.Time
		}
		if r.Time.After(tr.End) {
			tr.End = r.Time
		}
	}
	return tr, true
}
