package ws

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"windplant_qc/internal/frame"
	"windplant_qc/internal/qc"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeSeriesRequest = "series:request"

	// Server -> Client
	TypeDataLoaded  = "data:loaded"
	TypeQCSummary   = "qc:summary"
	TypeStreamDone  = "qc:stream"
	TypeSeriesData  = "series:data"
	TypeServerError = "error"
)

// Client -> Server messages

type SeriesRequestPayload struct {
	Device string `json:"device"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// Server -> Client messages

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DeviceInfo struct {
	ID        string        `json:"id"`
	Rows      int           `json:"rows"`
	TimeRange TimeRangeInfo `json:"time_range"`
}

type DataLoadedPayload struct {
	Plant     string        `json:"plant"`
	Devices   []DeviceInfo  `json:"devices"`
	TimeRange TimeRangeInfo `json:"time_range"`
}

type StreamStatsPayload struct {
	Stream            string `json:"stream"`
	RowsIn            int    `json:"rows_in"`
	RowsOut           int    `json:"rows_out"`
	DuplicatesDropped int    `json:"duplicates_dropped"`
	OutOfRangeDropped int    `json:"out_of_range_dropped"`
	IncompleteDropped int    `json:"incomplete_dropped"`
	FrozenFlagged     int    `json:"frozen_flagged"`
}

type QCSummaryPayload struct {
	Streams []StreamStatsPayload `json:"streams"`
}

type SeriesPoint struct {
	Time   string              `json:"time"`
	Values map[string]*float64 `json:"values"`
}

type SeriesDataPayload struct {
	Device string        `json:"device"`
	Points []SeriesPoint `json:"points"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func StreamStatsFromQC(stream string, s qc.Stats) StreamStatsPayload {
	return StreamStatsPayload{
		Stream:            stream,
		RowsIn:            s.RowsIn,
		RowsOut:           s.RowsOut,
		DuplicatesDropped: s.DuplicatesDropped,
		OutOfRangeDropped: s.OutOfRangeDropped,
		IncompleteDropped: s.IncompleteDropped,
		FrozenFlagged:     s.FrozenFlagged,
	}
}

func sortStreams(streams []StreamStatsPayload) {
	sort.Slice(streams, func(i, j int) bool {
		return streams[i].Stream < streams[j].Stream
	})
}

// SeriesPointsFromRows converts stored rows to wire points. NaN values
// become JSON nulls so the frontend can show gaps.
func SeriesPointsFromRows(rows []frame.Row) []SeriesPoint {
	points := make([]SeriesPoint, len(rows))
	for i, r := range rows {
		values := make(map[string]*float64, len(r.Values))
		for metric, v := range r.Values {
			if math.IsNaN(v) {
				values[metric] = nil
				continue
			}
			v := v
			values[metric] = &v
		}
		points[i] = SeriesPoint{
			Time:   r.Time.Format(time.RFC3339),
			Values: values,
		}
	}
	return points
}
