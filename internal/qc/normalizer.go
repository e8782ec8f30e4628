// Package qc normalizes raw stream frames into the canonical plant schema:
// time correction, deduplication, range filtering, frozen-sensor flagging,
// unit conversion, energy derivation, and field renaming.
package qc

import (
	"fmt"
	"math"
	"time"

	"windplant_qc/internal/dst"
	"windplant_qc/internal/filters"
	"windplant_qc/internal/frame"
	"windplant_qc/internal/model"
	"windplant_qc/internal/units"
)

// Bound is an inclusive [Min, Max] validity range for one metric. Rows
// with the metric outside the bound are removed entirely, unlike frozen
// flagging which only nulls values.
type Bound struct {
	Metric string
	Min    float64
	Max    float64
}

// Config drives one stream's normalization pipeline.
type Config struct {
	// Interval is the stream's sampling frequency, used for energy
	// derivation (e.g. 10m for SCADA, 1h for meter data).
	Interval time.Duration

	// Shift converts local timestamps to the reference time base.
	// Nil leaves timestamps untouched.
	Shift dst.Rule

	// Dedup selects the duplicate policy: SCADA keeps the first
	// occurrence, meter and curtailment drop every duplicated row.
	Dedup frame.DedupPolicy

	// Bounds remove out-of-range rows, intersected across metrics: a row
	// fails if any bounded metric is out of range. Applied before frozen
	// flagging so extreme outliers cannot anchor a false stable run.
	Bounds []Bound

	// FrozenMetrics are checked for frozen-sensor runs of FrozenRun or
	// more identical readings; flagged values become NaN.
	FrozenMetrics []string
	FrozenRun     int

	// PowerColumn, when set, is scaled by PowerScale (e.g. 1000 for a
	// source reporting kW in a watts-named field) and, with DeriveEnergy,
	// integrated over Interval into an energy_kwh column.
	PowerColumn  string
	PowerScale   float64
	DeriveEnergy bool

	// DropIncomplete removes rows holding any NaN after filtering, used
	// for curtailment data where partial rows are unusable.
	DropIncomplete bool

	// Rename maps working column names to the canonical schema. Applied
	// last.
	Rename map[string]string
}

// Stats counts what each pipeline stage did to a stream.
type Stats struct {
	RowsIn            int
	RowsOut           int
	DuplicatesDropped int
	OutOfRangeDropped int
	IncompleteDropped int
	FrozenFlagged     int
}

// Add accumulates another run's counters, used when per-device stats roll
// up into one stream total.
func (s *Stats) Add(o Stats) {
	s.RowsIn += o.RowsIn
	s.RowsOut += o.RowsOut
	s.DuplicatesDropped += o.DuplicatesDropped
	s.OutOfRangeDropped += o.OutOfRangeDropped
	s.IncompleteDropped += o.IncompleteDropped
	s.FrozenFlagged += o.FrozenFlagged
}

// Normalizer applies the fixed pipeline order to one device's frame:
// shift, dedup, sort, range filter, frozen flag, unit conversion, rename.
// Later stages depend on earlier ones' invariants, so the order is not
// configurable.
type Normalizer struct {
	cfg Config
}

func NewNormalizer(cfg Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

func (n *Normalizer) Normalize(f *frame.Frame) (Stats, error) {
	stats := Stats{RowsIn: f.Len()}

	if n.cfg.Shift != nil {
		rows := f.Rows()
		for i := range rows {
			shifted, err := n.cfg.Shift.Shift(rows[i].Time)
			if err != nil {
				return stats, fmt.Errorf("qc: time shift: %w", err)
			}
			rows[i].Time = shifted
		}
	}

	stats.DuplicatesDropped = f.Dedup(n.cfg.Dedup)
	f.SortByTime()

	if len(n.cfg.Bounds) > 0 {
		keep := make([]bool, f.Len())
		for i := range keep {
			keep[i] = true
		}
		for _, b := range n.cfg.Bounds {
			out := filters.RangeFlag(f.Column(b.Metric), b.Min, b.Max)
			for i, bad := range out {
				if bad {
					keep[i] = false
				}
			}
		}
		stats.OutOfRangeDropped = f.Keep(keep)
	}

	if n.cfg.FrozenRun > 0 {
		for _, metric := range n.cfg.FrozenMetrics {
			col := f.Column(metric)
			flagged := filters.UnresponsiveFlag(col, n.cfg.FrozenRun)
			for i, bad := range flagged {
				if bad {
					col[i] = math.NaN()
					stats.FrozenFlagged++
				}
			}
			f.SetColumn(metric, col)
		}
	}

	if n.cfg.PowerColumn != "" {
		power := f.Column(n.cfg.PowerColumn)
		if n.cfg.PowerScale != 0 && n.cfg.PowerScale != 1 {
			for i := range power {
				power[i] *= n.cfg.PowerScale
			}
			f.SetColumn(n.cfg.PowerColumn, power)
		}
		if n.cfg.DeriveEnergy {
			f.SetColumn(model.FieldEnergy, units.EnergyKWhSeries(power, n.cfg.Interval))
		}
	}

	if n.cfg.DropIncomplete {
		stats.IncompleteDropped = f.DropNaN()
	}

	f.Rename(n.cfg.Rename)

	stats.RowsOut = f.Len()
	return stats, nil
}
