package websocket

import (
	"realtime-chat/internal/protocol"
	"realtime-chat/pkg/logger"
)

// TypingNotifier relays ephemeral typing-state events to the other
// subscribers of a room. Nothing is persisted or authorized; the signal is
// trusted best-effort.
type TypingNotifier struct {
	broadcaster *Broadcaster
}

func NewTypingNotifier(broadcaster *Broadcaster) *TypingNotifier {
	return &TypingNotifier{broadcaster: broadcaster}
}

// Notify fans the typing state out to every subscriber of the room except
// the sender.
func (t *TypingNotifier) Notify(sender *Client, payload *protocol.TypingPayload) {
	if payload.ChatID == "" {
		return
	}

	frame, err := protocol.NewServerEvent(protocol.EventUserTyping, protocol.UserTypingPayload{
		UserID:   sender.UserID,
		IsTyping: payload.IsTyping,
		Name:     payload.Name,
	})
	if err != nil {
		logger.Error("Error marshaling typing event: %v", err)
		return
	}

	t.broadcaster.ToRoom(payload.ChatID, frame, sender.ID)
}
