package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"realtime-chat/internal/models"
	"realtime-chat/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// Chat Storage Implementation
func (db *PostgresDB) FindChatForParticipant(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	query := `
		SELECT id, name, participants, last_message, created_at
		FROM chats
		WHERE id = $1 AND $2 = ANY(participants)`

	chat := &models.Chat{}
	var name *string
	var lastMessage []byte
	err := db.pool.QueryRow(ctx, query, chatID, userID).Scan(
		&chat.ID, &name, &chat.Participants, &lastMessage, &chat.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if name != nil {
		chat.Name = *name
	}
	if len(lastMessage) > 0 {
		last := &models.LastMessage{}
		if err := json.Unmarshal(lastMessage, last); err == nil {
			chat.LastMessage = last
		}
	}

	return chat, nil
}

func (db *PostgresDB) SetLastMessage(ctx context.Context, chatID string, last models.LastMessage) error {
	payload, err := json.Marshal(last)
	if err != nil {
		return fmt.Errorf("failed to marshal last message: %w", err)
	}

	query := `UPDATE chats SET last_message = $2 WHERE id = $1`
	_, err = db.pool.Exec(ctx, query, chatID, payload)
	return err
}

// Message Storage Implementation
func (db *PostgresDB) InsertMessage(ctx context.Context, msg *models.Message) (string, error) {
	query := `
		INSERT INTO messages (chat_id, sender_id, sender_name, content, type,
			media_url, media_name, media_size, media_duration, thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text`

	var id string
	err := db.pool.QueryRow(ctx, query,
		msg.ChatID, msg.SenderID, msg.SenderName, msg.Content, string(msg.Type),
		nullable(msg.MediaURL), nullable(msg.MediaName), msg.MediaSize,
		msg.MediaDuration, nullable(msg.ThumbnailURL), msg.Timestamp,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert message: %w", err)
	}

	return id, nil
}

// User Storage Implementation
func (db *PostgresDB) SetPresence(ctx context.Context, userID string, isOnline bool, lastActive time.Time) error {
	query := `UPDATE users SET is_online = $2, last_active = $3 WHERE id = $1`
	_, err := db.pool.Exec(ctx, query, userID, isOnline, lastActive)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
