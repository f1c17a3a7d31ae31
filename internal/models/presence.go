package models

import "time"

// Presence is a user's online/offline status. The in-memory copy held by the
// presence broadcaster is authoritative; the users table carries a shadow for
// durability across restarts.
type Presence struct {
	UserID   string    `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}
