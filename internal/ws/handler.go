package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"windplant_qc/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and serves QC results from the store.
type Handler struct {
	hub       *Hub
	store     *store.Store
	plantName string
}

func NewHandler(hub *Hub, store *store.Store, plantName string) *Handler {
	return &Handler{hub: hub, store: store, plantName: plantName}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	// Send initial data:loaded and qc:summary messages
	h.sendDataLoaded(client)
	h.sendSummary(client)

	// Read messages from client
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeSeriesRequest:
		var p SeriesRequestPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("Invalid series:request payload: %v", err)
			return
		}
		h.handleSeriesRequest(c, p)

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func (h *Handler) handleSeriesRequest(c *Client, p SeriesRequestPayload) {
	start, err := time.Parse(time.RFC3339, p.Start)
	if err != nil {
		h.sendError(c, "invalid start timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, p.End)
	if err != nil {
		h.sendError(c, "invalid end timestamp")
		return
	}

	rows := h.store.RowsInRange(p.Device, start, end)
	msg, err := NewEnvelope(TypeSeriesData, SeriesDataPayload{
		Device: p.Device,
		Points: SeriesPointsFromRows(rows),
	})
	if err != nil {
		log.Printf("Error marshaling series data: %v", err)
		return
	}
	h.send(c, msg)
}

func (h *Handler) dataLoadedMessage() ([]byte, error) {
	devices := make([]DeviceInfo, 0)
	for _, id := range h.store.Devices() {
		info := DeviceInfo{ID: id, Rows: h.store.RowCount(id)}
		if tr, ok := h.store.TimeRange(id); ok {
			info.TimeRange = TimeRangeInfo{
				Start: tr.Start.Format(time.RFC3339),
				End:   tr.End.Format(time.RFC3339),
			}
		}
		devices = append(devices, info)
	}

	payload := DataLoadedPayload{
		Plant:   h.plantName,
		Devices: devices,
	}
	if tr, ok := h.store.GlobalTimeRange(); ok {
		payload.TimeRange = TimeRangeInfo{
			Start: tr.Start.Format(time.RFC3339),
			End:   tr.End.Format(time.RFC3339),
		}
	}

	return NewEnvelope(TypeDataLoaded, payload)
}

func (h *Handler) summaryMessage() ([]byte, error) {
	stats := h.store.Stats()
	streams := make([]StreamStatsPayload, 0, len(stats))
	for name, s := range stats {
		streams = append(streams, StreamStatsFromQC(name, s))
	}
	sortStreams(streams)
	return NewEnvelope(TypeQCSummary, QCSummaryPayload{Streams: streams})
}

// BroadcastDataLoaded pushes the current device list to every client,
// used after a pipeline reload.
func (h *Handler) BroadcastDataLoaded() {
	msg, err := h.dataLoadedMessage()
	if err != nil {
		log.Printf("Error creating data:loaded message: %v", err)
		return
	}
	h.hub.Broadcast(msg)
}

func (h *Handler) sendDataLoaded(c *Client) {
	msg, err := h.dataLoadedMessage()
	if err != nil {
		log.Printf("Error creating data:loaded message: %v", err)
		return
	}
	h.send(c, msg)
}

func (h *Handler) sendSummary(c *Client) {
	msg, err := h.summaryMessage()
	if err != nil {
		log.Printf("Error creating qc:summary message: %v", err)
		return
	}
	h.send(c, msg)
}

func (h *Handler) sendError(c *Client, text string) {
	msg, err := NewEnvelope(TypeServerError, ErrorPayload{Message: text})
	if err != nil {
		return
	}
	h.send(c, msg)
}

func (h *Handler) send(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}
