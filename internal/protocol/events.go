// Package protocol defines the WebSocket event names and payload structures
// exchanged between the chat client and server. Every frame is a JSON
// envelope with an "event" discriminator and an event-specific "data"
// payload. The event names are part of the wire contract and must not change.
package protocol

import (
	"encoding/json"
	"fmt"

	"realtime-chat/internal/models"
)

// Client -> Server event names.
const (
	EventJoinChat    = "join-chat"
	EventLeaveChat   = "leave-chat"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventUserOnline  = "user-online"
	EventUserOffline = "user-offline"
)

// Server -> Client event names.
const (
	EventNewMessage     = "new-message"
	EventUserTyping     = "user-typing"
	EventPresenceUpdate = "presence-update"
	EventError          = "error"
)

// Envelope holds the event name and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the inbound send-message event body. IsPersistent is
// a pointer so "absent" (persist, the default) is distinguishable from an
// explicit false (ephemeral message, never stored).
type SendMessagePayload struct {
	ChatID        string  `json:"chatId"`
	Content       string  `json:"content"`
	SenderName    string  `json:"senderName"`
	Type          string  `json:"type,omitempty"`
	MediaURL      string  `json:"mediaUrl,omitempty"`
	MediaName     string  `json:"mediaName,omitempty"`
	MediaSize     int64   `json:"mediaSize,omitempty"`
	MediaDuration float64 `json:"mediaDuration,omitempty"`
	ThumbnailURL  string  `json:"thumbnailUrl,omitempty"`
	IsPersistent  *bool   `json:"isPersistent,omitempty"`
}

// Persist reports whether the message should be written to durable storage.
// Only an explicit isPersistent:false opts out.
func (p *SendMessagePayload) Persist() bool {
	return p.IsPersistent == nil || *p.IsPersistent
}

// TypingPayload is the inbound typing event body.
type TypingPayload struct {
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
	Name     string `json:"name"`
}

// PresencePayload is the inbound user-online / user-offline event body.
type PresencePayload struct {
	UserID string `json:"userId"`
}

// UserTypingPayload is the outbound user-typing event body.
type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
	Name     string `json:"name"`
}

// ErrorPayload is the outbound error event body, delivered only to the
// connection that caused the error.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ParseEnvelope decodes a raw frame into an Envelope. The event name must be
// present and non-empty; the data payload is left raw for the dispatcher.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("protocol: missing or empty \"event\" field")
	}
	return &env, nil
}

// ChatID decodes a payload that is a bare JSON string holding a chat
// identifier (the join-chat / leave-chat data shape).
func (e *Envelope) ChatID() (string, error) {
	var chatID string
	if err := json.Unmarshal(e.Data, &chatID); err != nil {
		return "", fmt.Errorf("protocol: %s payload is not a chat id: %w", e.Event, err)
	}
	return chatID, nil
}

// NewServerEvent builds a marshaled outbound frame for the given event name
// and payload.
func NewServerEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// NewMessageEvent builds the outbound new-message frame for a finished
// message record.
func NewMessageEvent(msg *models.Message) ([]byte, error) {
	return NewServerEvent(EventNewMessage, msg)
}

// NewErrorEvent builds the outbound error frame with a short human-readable
// reason.
func NewErrorEvent(reason string) ([]byte, error) {
	return NewServerEvent(EventError, ErrorPayload{Message: reason})
}
