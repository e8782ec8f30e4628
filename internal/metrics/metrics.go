// Package metrics exposes Prometheus counters for the QC pipeline. The
// server serves them at /metrics; batch runs register them but only the
// final values matter there.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"windplant_qc/internal/qc"
)

// Drop reason labels.
const (
	ReasonDuplicate  = "duplicate"
	ReasonOutOfRange = "out_of_range"
	ReasonIncomplete = "incomplete"
	ReasonUnparsable = "unparsable"
)

var (
	RowsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windplant_qc_rows_ingested_total",
		Help: "Raw rows read per stream before normalization.",
	}, []string{"stream"})

	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windplant_qc_rows_dropped_total",
		Help: "Rows removed during normalization, by stream and reason.",
	}, []string{"stream", "reason"})

	ValuesFrozen = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windplant_qc_values_frozen_total",
		Help: "Values nulled by the unresponsive-sensor detector, per stream.",
	}, []string{"stream"})
)

// ObserveStream records one stream's normalization outcome.
func ObserveStream(stream string, skipped int, stats qc.Stats) {
	RowsIngested.WithLabelValues(stream).Add(float64(stats.RowsIn + skipped))
	RowsDropped.WithLabelValues(stream, ReasonUnparsable).Add(float64(skipped))
	RowsDropped.WithLabelValues(stream, ReasonDuplicate).Add(float64(stats.DuplicatesDropped))
	RowsDropped.WithLabelValues(stream, ReasonOutOfRange).Add(float64(stats.OutOfRangeDropped))
	RowsDropped.WithLabelValues(stream, ReasonIncomplete).Add(float64(stats.IncompleteDropped))
	ValuesFrozen.WithLabelValues(stream).Add(float64(stats.FrozenFlagged))
}
