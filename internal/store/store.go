package store

import (
	"sort"
	"sync"
	"time"

	"windplant_qc/internal/frame"
	"windplant_qc/internal/model"
	"windplant_qc/internal/plant"
	"windplant_qc/internal/qc"
)

// Store holds a plant's normalized SCADA rows in memory, indexed by device
// ID, for the dashboard server. Readers stay consistent while a pipeline
// reload swaps the data underneath them.
type Store struct {
	mu      sync.RWMutex
	devices []string
	rows    map[string][]frame.Row // keyed by device ID, sorted by timestamp
	stats   map[string]qc.Stats
}

func New() *Store {
	return &Store{
		rows:  make(map[string][]frame.Row),
		stats: make(map[string]qc.Stats),
	}
}

// SetPlant replaces the stored data with a freshly normalized plant.
func (s *Store) SetPlant(p *plant.Plant) {
	rows := make(map[string][]frame.Row, len(p.Devices))
	if p.SCADA != nil {
		// The merged frame is time-sorted, so per-device slices are too.
		for _, r := range p.SCADA.Rows() {
			rows[r.Device] = append(rows[r.Device], r)
		}
	}

	stats := make(map[string]qc.Stats, len(p.Stats))
	for name, st := range p.Stats {
		stats[name] = st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append([]string(nil), p.Devices...)
	s.rows = rows
	s.stats = stats
}

// Devices returns device IDs in first-appearance order.
func (s *Store) Devices() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.devices...)
}

// Stats returns the per-stream normalization counters.
func (s *Store) Stats() map[string]qc.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]qc.Stats, len(s.stats))
	for name, st := range s.stats {
		out[name] = st
	}
	return out
}

// RowCount returns the number of rows stored for a device.
func (s *Store) RowCount(device string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[device])
}

// TimeRange returns the time range covered by a device's rows.
func (s *Store) TimeRange(device string) (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.rows[device]
	if len(rows) == 0 {
		return model.TimeRange{}, false
	}

	return model.TimeRange{
		Start: rows[0].Time,
		End:   rows[len(rows)-1].Time,
	}, true
}

// GlobalTimeRange returns the union of all devices' time ranges.
func (s *Store) GlobalTimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var start, end time.Time
	first := true

	for _, rows := range s.rows {
		if len(rows) == 0 {
			continue
		}
		rStart := rows[0].Time
		rEnd := rows[len(rows)-1].Time

		if first || rStart.Before(start) {
			start = rStart
		}
		if first || rEnd.After(end) {
			end = rEnd
		}
		first = false
	}

	if first {
		return model.TimeRange{}, false
	}
	return model.TimeRange{Start: start, End: end}, true
}

// RowsInRange returns a device's rows between start (inclusive) and end (exclusive).
func (s *Store) RowsInRange(device string, start, end time.Time) []frame.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.rows[device]
	if len(all) == 0 {
		return nil
	}

	// Binary search for start index
	startIdx := sort.Search(len(all), func(i int) bool {
		return !all[i].Time.Before(start)
	})

	// Binary search for end index
	endIdx := sort.Search(len(all), func(i int) bool {
		return !all[i].Time.Before(end)
	})

	if startIdx >= endIdx {
		return nil
	}

	result := make([]frame.Row, endIdx-startIdx)
	copy(result, all[startIdx:endIdx])
	return result
}

// RowAt returns the most recent row at or before the given timestamp.
func (s *Store) RowAt(device string, t time.Time) (frame.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.rows[device]
	if len(all) == 0 {
		return frame.Row{}, false
	}

	// Find first row after t
	idx := sort.Search(len(all), func(i int) bool {
		return all[i].Time.After(t)
	})

	if idx == 0 {
		return frame.Row{}, false
	}

	return all[idx-1], true
}
