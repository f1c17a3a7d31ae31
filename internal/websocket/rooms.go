package websocket

import "sync"

// Rooms maps chat ids to the set of connection ids subscribed to them. Joins
// are optimistic; authorization happens later, in the message router, before
// anything is persisted or broadcast.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[string]struct{})}
}

// Join subscribes the connection to the room. Joining twice is a no-op.
func (rm *Rooms) Join(connID, chatID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	set, ok := rm.members[chatID]
	if !ok {
		set = make(map[string]struct{})
		rm.members[chatID] = set
	}
	set[connID] = struct{}{}
}

// Leave unsubscribes the connection from the room. Leaving a room the
// connection never joined is a no-op. Empty rooms are released.
func (rm *Rooms) Leave(connID, chatID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.leaveLocked(connID, chatID)
}

func (rm *Rooms) leaveLocked(connID, chatID string) {
	set, ok := rm.members[chatID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(rm.members, chatID)
	}
}

// RemoveAll strips the connection from every room it joined and returns the
// ids of the rooms it left.
func (rm *Rooms) RemoveAll(connID string) []string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var left []string
	for chatID, set := range rm.members {
		if _, ok := set[connID]; ok {
			left = append(left, chatID)
			rm.leaveLocked(connID, chatID)
		}
	}
	return left
}

// Subscribers returns a snapshot of the connection ids currently subscribed
// to the room.
func (rm *Rooms) Subscribers(chatID string) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	set, ok := rm.members[chatID]
	if !ok {
		return nil
	}
	subs := make([]string, 0, len(set))
	for connID := range set {
		subs = append(subs, connID)
	}
	return subs
}

// Contains reports whether the connection is subscribed to the room.
func (rm *Rooms) Contains(connID, chatID string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, ok := rm.members[chatID][connID]
	return ok
}

// Count returns the number of rooms with at least one subscriber.
func (rm *Rooms) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.members)
}
