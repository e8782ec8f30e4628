package qc

import (
	"windplant_qc/internal/frame"
)

// Merge concatenates normalized per-device frames in input order and
// re-sorts ascending by timestamp. The sort is stable, so rows from
// different devices at the same instant keep their input order. No
// cross-device deduplication happens: simultaneous readings from
// different turbines are expected and valid, and the merged row count
// always equals the sum of the inputs.
func Merge(frames ...*frame.Frame) *frame.Frame {
	merged := frame.New()
	for _, f := range frames {
		merged.Append(f.Rows()...)
	}
	merged.SortByTime()
	return merged
}

// SplitByDevice partitions a frame into per-device frames, keyed by
// device identifier and listed in first-appearance order so multi-device
// processing is deterministic.
func SplitByDevice(f *frame.Frame) ([]string, map[string]*frame.Frame) {
	var order []string
	parts := make(map[string]*frame.Frame)

	for _, r := range f.Rows() {
		part, ok := parts[r.Device]
		if !ok {
			part = frame.New()
			parts[r.Device] = part
			order = append(order, r.Device)
		}
		part.Append(r)
	}

	return order, parts
}
