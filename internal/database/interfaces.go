package database

import (
	"context"
	"time"

	"realtime-chat/internal/models"
)

// ChatStorage answers participant-scoped chat lookups and keeps the
// denormalized last-message summary current.
type ChatStorage interface {
	// FindChatForParticipant returns the chat only if it exists and lists
	// userID among its participants; (nil, nil) otherwise.
	FindChatForParticipant(ctx context.Context, chatID, userID string) (*models.Chat, error)
	SetLastMessage(ctx context.Context, chatID string, last models.LastMessage) error
}

// MessageStorage persists finished message records and issues their durable
// identifiers.
type MessageStorage interface {
	InsertMessage(ctx context.Context, msg *models.Message) (string, error)
}

// UserStorage carries the durable shadow of per-user presence.
type UserStorage interface {
	SetPresence(ctx context.Context, userID string, isOnline bool, lastActive time.Time) error
}

type Database interface {
	ChatStorage
	MessageStorage
	UserStorage
	Close() error
}
