package websocket

import (
	"context"
	"sync"
	"time"

	"realtime-chat/internal/database"
	"realtime-chat/internal/models"
	"realtime-chat/internal/protocol"
	"realtime-chat/pkg/logger"
)

// PresenceBroadcaster owns the authoritative in-memory presence cache and
// shadows every change through user storage. Presence is best-effort: a
// storage failure is logged and never blocks the fan-out.
type PresenceBroadcaster struct {
	mu          sync.RWMutex
	cache       map[string]models.Presence
	users       database.UserStorage
	broadcaster *Broadcaster
}

func NewPresenceBroadcaster(users database.UserStorage, broadcaster *Broadcaster) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		cache:       make(map[string]models.Presence),
		users:       users,
		broadcaster: broadcaster,
	}
}

// MarkOnline records the user as online and notifies every other session.
// exceptConnID is the connection whose own presence changed; it is excluded
// from the fan-out.
func (p *PresenceBroadcaster) MarkOnline(userID, exceptConnID string) {
	p.mark(userID, true, exceptConnID)
}

// MarkOffline records the user as offline and notifies every other session.
func (p *PresenceBroadcaster) MarkOffline(userID, exceptConnID string) {
	p.mark(userID, false, exceptConnID)
}

func (p *PresenceBroadcaster) mark(userID string, isOnline bool, exceptConnID string) {
	now := time.Now()

	if err := p.users.SetPresence(context.Background(), userID, isOnline, now); err != nil {
		logger.Error("Error updating presence for user %s: %v", userID, err)
	}

	presence := models.Presence{UserID: userID, IsOnline: isOnline, LastSeen: now}

	p.mu.Lock()
	p.cache[userID] = presence
	p.mu.Unlock()

	frame, err := protocol.NewServerEvent(protocol.EventPresenceUpdate, presence)
	if err != nil {
		logger.Error("Error marshaling presence update: %v", err)
		return
	}
	p.broadcaster.ToAll(frame, exceptConnID)
}

// Get returns the cached presence entry for the user.
func (p *PresenceBroadcaster) Get(userID string) (models.Presence, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	presence, ok := p.cache[userID]
	return presence, ok
}
