package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"realtime-chat/internal/auth"
	"realtime-chat/internal/config"
	"realtime-chat/internal/models"
	"realtime-chat/internal/protocol"
)

// fakeStorage implements the chat, message and user storage collaborators
// in memory so the realtime core can be exercised without a database.
type fakeStorage struct {
	mu sync.Mutex

	chats        map[string]*models.Chat
	inserted     []*models.Message
	issuedIDs    []string
	lastMessages map[string]models.LastMessage
	presence     []presenceWrite

	findErr     error
	insertErr   error
	presenceErr error
}

type presenceWrite struct {
	userID     string
	isOnline   bool
	lastActive time.Time
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		chats:        make(map[string]*models.Chat),
		lastMessages: make(map[string]models.LastMessage),
	}
}

func (f *fakeStorage) addChat(chatID string, participants ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats[chatID] = &models.Chat{ID: chatID, Participants: participants}
}

func (f *fakeStorage) FindChatForParticipant(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	chat, ok := f.chats[chatID]
	if !ok || !chat.HasParticipant(userID) {
		return nil, nil
	}
	return chat, nil
}

func (f *fakeStorage) SetLastMessage(ctx context.Context, chatID string, last models.LastMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMessages[chatID] = last
	return nil
}

func (f *fakeStorage) InsertMessage(ctx context.Context, msg *models.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	copied := *msg
	f.inserted = append(f.inserted, &copied)
	id := fmt.Sprintf("m%d", 100+len(f.inserted)-1)
	f.issuedIDs = append(f.issuedIDs, id)
	return id, nil
}

func (f *fakeStorage) SetPresence(ctx context.Context, userID string, isOnline bool, lastActive time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presenceErr != nil {
		return f.presenceErr
	}
	f.presence = append(f.presence, presenceWrite{userID, isOnline, lastActive})
	return nil
}

func (f *fakeStorage) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func (f *fakeStorage) lastMessage(chatID string) (models.LastMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.lastMessages[chatID]
	return last, ok
}

func (f *fakeStorage) presenceWrites() []presenceWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]presenceWrite(nil), f.presence...)
}

func testConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		SendQueueSize:  16,
		PingInterval:   25 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 65536,
	}
}

func newTestGateway(store *fakeStorage) *Gateway {
	return NewGateway(testConfig(), store, store, store)
}

// connect registers a live connection for the given user. Registration fans
// presence-update frames out to earlier connections; drain them as needed.
func connect(g *Gateway, userID string) *Client {
	c := g.NewClient(nil, &auth.Identity{UserID: userID, Email: userID + "@example.com"})
	g.Register(c)
	return c
}

// drain empties a client's outbound queue.
func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func recvEvent(t *testing.T, c *Client) *protocol.Envelope {
	t.Helper()
	select {
	case frame := <-c.send:
		env, err := protocol.ParseEnvelope(frame)
		if err != nil {
			t.Fatalf("received unparseable frame: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func recvMessage(t *testing.T, c *Client) *models.Message {
	t.Helper()
	env := recvEvent(t, c)
	if env.Event != protocol.EventNewMessage {
		t.Fatalf("expected %s event, got %s", protocol.EventNewMessage, env.Event)
	}
	msg := &models.Message{}
	if err := json.Unmarshal(env.Data, msg); err != nil {
		t.Fatalf("failed to decode message payload: %v", err)
	}
	return msg
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.send:
		t.Fatalf("expected no event, got %s", frame)
	default:
	}
}

func dispatchJSON(g *Gateway, c *Client, event string, data string) {
	g.Dispatch(c, []byte(`{"event":"`+event+`","data":`+data+`}`))
}
