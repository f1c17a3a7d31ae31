package websocket

import (
	"sync"

	"realtime-chat/internal/metrics"
	"realtime-chat/pkg/logger"
)

// Broadcaster fans a finished frame out to a room's subscribers. Deliveries
// for one room are serialized under a single mutex so every subscriber
// observes broadcasts in the same order the routing calls completed.
type Broadcaster struct {
	mu       sync.Mutex
	rooms    *Rooms
	registry *Registry
}

func NewBroadcaster(rooms *Rooms, registry *Registry) *Broadcaster {
	return &Broadcaster{rooms: rooms, registry: registry}
}

// ToRoom delivers the frame to every subscriber of the room, at most once
// each. exceptConnID (if non-empty) is skipped. Slow clients whose send
// queue is full are disconnected rather than allowed to stall the room.
func (b *Broadcaster) ToRoom(chatID string, frame []byte, exceptConnID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, connID := range b.rooms.Subscribers(chatID) {
		if connID == exceptConnID {
			continue
		}
		client, ok := b.registry.Get(connID)
		if !ok {
			continue
		}
		if !client.enqueue(frame) {
			metrics.BroadcastsDropped.Inc()
			logger.Warn("Dropping slow connection %s (user %s): send queue full", client.ID, client.UserID)
			client.closeTransport()
		}
	}
}

// ToAll delivers the frame to every live connection except exceptConnID.
// Used for process-wide presence fan-out.
func (b *Broadcaster) ToAll(frame []byte, exceptConnID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, client := range b.registry.Snapshot() {
		if client.ID == exceptConnID {
			continue
		}
		if !client.enqueue(frame) {
			metrics.BroadcastsDropped.Inc()
			logger.Warn("Dropping slow connection %s (user %s): send queue full", client.ID, client.UserID)
			client.closeTransport()
		}
	}
}
