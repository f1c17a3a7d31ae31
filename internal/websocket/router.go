package websocket

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"realtime-chat/internal/database"
	"realtime-chat/internal/metrics"
	"realtime-chat/internal/models"
	"realtime-chat/internal/protocol"
	"realtime-chat/pkg/logger"
)

// Router validates inbound send-message events, decides whether the message
// is persisted or ephemeral, builds the canonical record and broadcasts it to
// the room. Nothing that goes wrong here may terminate the sender's
// connection; failures come back as scoped error events only.
type Router struct {
	chats       database.ChatStorage
	messages    database.MessageStorage
	broadcaster *Broadcaster
}

func NewRouter(chats database.ChatStorage, messages database.MessageStorage, broadcaster *Broadcaster) *Router {
	return &Router{
		chats:       chats,
		messages:    messages,
		broadcaster: broadcaster,
	}
}

// Route processes one send-message event from the given sender connection.
func (r *Router) Route(sender *Client, payload *protocol.SendMessagePayload) {
	start := time.Now()

	if payload.ChatID == "" || payload.SenderName == "" {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		sender.sendError("Missing required message data")
		return
	}

	ctx := context.Background()

	chat, err := r.chats.FindChatForParticipant(ctx, payload.ChatID, sender.UserID)
	if err != nil {
		logger.Error("Send message error: %v", err)
		metrics.MessagesTotal.WithLabelValues("failed").Inc()
		sender.sendError("Failed to send message")
		return
	}
	if chat == nil {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		sender.sendError("Chat not found or access denied")
		return
	}

	msg := r.buildMessage(sender, payload)

	if payload.Persist() {
		id, err := r.messages.InsertMessage(ctx, msg)
		if err != nil {
			logger.Error("Send message error: %v", err)
			metrics.MessagesTotal.WithLabelValues("failed").Inc()
			sender.sendError("Failed to send message")
			return
		}
		msg.ID = id

		last := models.LastMessage{
			Content:    summaryFor(payload),
			Timestamp:  time.Now(),
			SenderName: payload.SenderName,
			Type:       msg.Type,
		}
		if err := r.chats.SetLastMessage(ctx, payload.ChatID, last); err != nil {
			logger.Error("Send message error: %v", err)
			metrics.MessagesTotal.WithLabelValues("failed").Inc()
			sender.sendError("Failed to send message")
			return
		}
		metrics.MessagesTotal.WithLabelValues("persisted").Inc()
	} else {
		msg.ID = tempMessageID()
		msg.IsTemporary = true
		metrics.MessagesTotal.WithLabelValues("temporary").Inc()
	}

	frame, err := protocol.NewMessageEvent(msg)
	if err != nil {
		logger.Error("Error marshaling message: %v", err)
		sender.sendError("Failed to send message")
		return
	}

	// The sender receives its own message through the same broadcast as
	// everyone else; there is no local echo path.
	r.broadcaster.ToRoom(payload.ChatID, frame, "")
	metrics.RouteLatency.Observe(time.Since(start).Seconds())
}

func (r *Router) buildMessage(sender *Client, payload *protocol.SendMessagePayload) *models.Message {
	kind := models.MessageKind(payload.Type)
	if kind == "" {
		kind = models.MessageKindText
	}

	msg := &models.Message{
		Content:    payload.Content,
		SenderID:   sender.UserID,
		SenderName: payload.SenderName,
		ChatID:     payload.ChatID,
		Timestamp:  time.Now(),
		Type:       kind,
	}

	if payload.MediaURL != "" {
		msg.MediaURL = payload.MediaURL
		msg.MediaName = payload.MediaName
		msg.MediaSize = payload.MediaSize
		msg.MediaDuration = payload.MediaDuration
		msg.ThumbnailURL = payload.ThumbnailURL
	}

	return msg
}

// summaryFor builds the chat-list preview line: the raw content for text
// messages, a glyph plus media name for everything else.
func summaryFor(payload *protocol.SendMessagePayload) string {
	if payload.Type == "" || payload.Type == string(models.MessageKindText) {
		return payload.Content
	}

	var glyph string
	switch models.MessageKind(payload.Type) {
	case models.MessageKindImage:
		glyph = "📷"
	case models.MessageKindVideo:
		glyph = "🎥"
	case models.MessageKindAudio:
		glyph = "🎵"
	default:
		glyph = "📎"
	}

	name := payload.MediaName
	if name == "" {
		name = payload.Type + " file"
	}
	return glyph + " " + name
}

// tempMessageID generates an identifier for a message that is never written
// to storage. The prefix keeps it recognizably distinct from storage-issued
// ids; the random suffix keeps concurrent ephemeral messages distinct from
// each other.
func tempMessageID() string {
	suffix := make([]byte, 5)
	if _, err := rand.Read(suffix); err != nil {
		logger.Error("Error generating temporary message ID: %v", err)
	}
	return fmt.Sprintf("%s%d_%x", models.TempIDPrefix, time.Now().UnixMilli(), suffix)
}
