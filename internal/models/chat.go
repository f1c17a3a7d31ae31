package models

import "time"

type Chat struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name,omitempty"`
	Participants []string     `json:"participants"`
	LastMessage  *LastMessage `json:"lastMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// LastMessage is the denormalized summary stored on the parent chat so list
// views can render a preview without loading the message collection.
type LastMessage struct {
	Content    string      `json:"content"`
	Timestamp  time.Time   `json:"timestamp"`
	SenderName string      `json:"senderName"`
	Type       MessageKind `json:"type"`
}

// HasParticipant reports whether userID is listed on the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
