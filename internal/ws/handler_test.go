package ws

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windplant_qc/internal/frame"
	"windplant_qc/internal/model"
	"windplant_qc/internal/plant"
	"windplant_qc/internal/qc"
	"windplant_qc/internal/store"
)

var startTime = time.Date(2016, 6, 1, 12, 0, 0, 0, time.UTC)

// testStore builds a store with one device carrying five hourly rows,
// one of them with a nulled wind speed.
func testStore() *store.Store {
	rows := make([]frame.Row, 5)
	for i := range rows {
		ws := 6.0 + float64(i)
		if i == 2 {
			ws = math.NaN()
		}
		rows[i] = frame.Row{
			Time:   startTime.Add(time.Duration(i) * time.Hour),
			Device: "R80711",
			Values: map[string]float64{
				model.FieldPower:     float64(100 * (i + 1)),
				model.FieldWindSpeed: ws,
			},
		}
	}

	s := store.New()
	s.SetPlant(&plant.Plant{
		SCADA:   frame.New(rows...),
		Devices: []string{"R80711"},
		Stats: map[string]qc.Stats{
			"scada": {RowsIn: 8, RowsOut: 5, DuplicatesDropped: 1, FrozenFlagged: 1},
			"meter": {RowsIn: 4, RowsOut: 3, OutOfRangeDropped: 1},
		},
	})
	return s
}

// dialHandler sets up a test server with the handler and returns a WS connection.
func dialHandler(t *testing.T, handler *Handler) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// readJSON reads the next JSON message from the connection.
func readJSON(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

// sendJSON sends a JSON message on the connection.
func sendJSON(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	data, err := NewEnvelope(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestHandler_InitialMessages(t *testing.T) {
	handler := NewHandler(NewHub(), testStore(), "engie")

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	// First message should be data:loaded
	env1 := readJSON(t, conn)
	assert.Equal(t, TypeDataLoaded, env1.Type)

	var dl DataLoadedPayload
	require.NoError(t, json.Unmarshal(env1.Payload, &dl))
	assert.Equal(t, "engie", dl.Plant)
	require.Len(t, dl.Devices, 1)
	assert.Equal(t, "R80711", dl.Devices[0].ID)
	assert.Equal(t, 5, dl.Devices[0].Rows)
	assert.NotEmpty(t, dl.TimeRange.Start)
	assert.NotEmpty(t, dl.TimeRange.End)

	// Second message should be qc:summary, streams sorted by name
	env2 := readJSON(t, conn)
	assert.Equal(t, TypeQCSummary, env2.Type)

	var sum QCSummaryPayload
	require.NoError(t, json.Unmarshal(env2.Payload, &sum))
	require.Len(t, sum.Streams, 2)
	assert.Equal(t, "meter", sum.Streams[0].Stream)
	assert.Equal(t, "scada", sum.Streams[1].Stream)
	assert.Equal(t, 1, sum.Streams[1].FrozenFlagged)
}

func TestHandler_SeriesRequest(t *testing.T) {
	handler := NewHandler(NewHub(), testStore(), "engie")

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	// Drain initial messages
	readJSON(t, conn) // data:loaded
	readJSON(t, conn) // qc:summary

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{
		Device: "R80711",
		Start:  startTime.Add(time.Hour).Format(time.RFC3339),
		End:    startTime.Add(4 * time.Hour).Format(time.RFC3339),
	})

	env := readJSON(t, conn)
	require.Equal(t, TypeSeriesData, env.Type)

	var sd SeriesDataPayload
	require.NoError(t, json.Unmarshal(env.Payload, &sd))
	assert.Equal(t, "R80711", sd.Device)
	require.Len(t, sd.Points, 3)

	// Second point carries the nulled wind speed
	require.NotNil(t, sd.Points[0].Values[model.FieldWindSpeed])
	assert.InDelta(t, 7.0, *sd.Points[0].Values[model.FieldWindSpeed], 0.001)
	assert.Nil(t, sd.Points[1].Values[model.FieldWindSpeed])
	require.NotNil(t, sd.Points[1].Values[model.FieldPower])
	assert.InDelta(t, 300.0, *sd.Points[1].Values[model.FieldPower], 0.001)
}

func TestHandler_SeriesRequest_UnknownDevice(t *testing.T) {
	handler := NewHandler(NewHub(), testStore(), "engie")

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{
		Device: "nonexistent",
		Start:  startTime.Format(time.RFC3339),
		End:    startTime.Add(time.Hour).Format(time.RFC3339),
	})

	env := readJSON(t, conn)
	require.Equal(t, TypeSeriesData, env.Type)

	var sd SeriesDataPayload
	require.NoError(t, json.Unmarshal(env.Payload, &sd))
	assert.Empty(t, sd.Points)
}

func TestHandler_SeriesRequest_BadTimestamp(t *testing.T) {
	handler := NewHandler(NewHub(), testStore(), "engie")

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{
		Device: "R80711",
		Start:  "not-a-timestamp",
		End:    startTime.Format(time.RFC3339),
	})

	env := readJSON(t, conn)
	require.Equal(t, TypeServerError, env.Type)

	var ep ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &ep))
	assert.Contains(t, ep.Message, "start")
}

func TestHandler_InvalidMessage(t *testing.T) {
	handler := NewHandler(NewHub(), testStore(), "engie")

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	// Send invalid JSON — should not crash
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// Connection should still answer a valid request afterwards
	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{
		Device: "R80711",
		Start:  startTime.Format(time.RFC3339),
		End:    startTime.Add(time.Hour).Format(time.RFC3339),
	})

	env := readJSON(t, conn)
	assert.Equal(t, TypeSeriesData, env.Type)
}
