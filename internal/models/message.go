package models

import "time"

type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindSystem MessageKind = "system"
	MessageKindImage  MessageKind = "image"
	MessageKindAudio  MessageKind = "audio"
	MessageKindVideo  MessageKind = "video"
	MessageKindFile   MessageKind = "file"
)

// TempIDPrefix marks message identifiers that were never written to storage.
const TempIDPrefix = "temp_"

type Message struct {
	ID            string      `json:"_id"`
	Content       string      `json:"content"`
	SenderID      string      `json:"senderId"`
	SenderName    string      `json:"senderName"`
	ChatID        string      `json:"chatId"`
	Timestamp     time.Time   `json:"timestamp"`
	Type          MessageKind `json:"type"`
	MediaURL      string      `json:"mediaUrl,omitempty"`
	MediaName     string      `json:"mediaName,omitempty"`
	MediaSize     int64       `json:"mediaSize,omitempty"`
	MediaDuration float64     `json:"mediaDuration,omitempty"`
	ThumbnailURL  string      `json:"thumbnailUrl,omitempty"`
	IsTemporary   bool        `json:"isTemporary,omitempty"`
}

// IsTemp reports whether the message identifier was locally generated and
// never issued by storage.
func (m *Message) IsTemp() bool {
	return len(m.ID) >= len(TempIDPrefix) && m.ID[:len(TempIDPrefix)] == TempIDPrefix
}
