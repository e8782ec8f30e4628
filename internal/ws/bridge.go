package ws

import (
	"log"

	"windplant_qc/internal/qc"
)

// Bridge implements plant.Progress and broadcasts pipeline progress to the
// WebSocket hub, so dashboards can follow a reload stream by stream.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnStream(name string, stats qc.Stats) {
	msg, err := NewEnvelope(TypeStreamDone, StreamStatsFromQC(name, stats))
	if err != nil {
		log.Printf("Error marshaling stream stats: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
