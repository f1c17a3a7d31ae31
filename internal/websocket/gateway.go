package websocket

import (
	"encoding/json"
	"fmt"

	"realtime-chat/internal/auth"
	"realtime-chat/internal/config"
	"realtime-chat/internal/database"
	"realtime-chat/internal/metrics"
	"realtime-chat/internal/protocol"
	"realtime-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Gateway owns the realtime core: the session registry, room membership,
// presence, routing and typing fan-out. All shared state is constructed here
// and injected into the components; nothing is package-global.
type Gateway struct {
	cfg      config.WebSocketConfig
	registry *Registry
	rooms    *Rooms
	presence *PresenceBroadcaster
	router   *Router
	typing   *TypingNotifier
}

func NewGateway(cfg config.WebSocketConfig, chats database.ChatStorage, messages database.MessageStorage, users database.UserStorage) *Gateway {
	registry := NewRegistry()
	rooms := NewRooms()
	broadcaster := NewBroadcaster(rooms, registry)

	return &Gateway{
		cfg:      cfg,
		registry: registry,
		rooms:    rooms,
		presence: NewPresenceBroadcaster(users, broadcaster),
		router:   NewRouter(chats, messages, broadcaster),
		typing:   NewTypingNotifier(broadcaster),
	}
}

// NewClient allocates a connection record for an authenticated identity.
func (g *Gateway) NewClient(conn *websocket.Conn, ident *auth.Identity) *Client {
	return &Client{
		ID:      uuid.NewString(),
		UserID:  ident.UserID,
		Email:   ident.Email,
		conn:    conn,
		send:    make(chan []byte, g.cfg.SendQueueSize),
		gateway: g,
	}
}

// Register adds the client to the session registry and marks its user
// online.
func (g *Gateway) Register(c *Client) {
	g.registry.Add(c)
	metrics.ConnectionsActive.Set(float64(g.registry.Count()))
	g.presence.MarkOnline(c.UserID, c.ID)
	logger.Info("User connected: %s", c.UserID)
}

// Disconnect runs the full cleanup path for a connection: leave every room,
// drop the registry entry, flip presence offline if this was the user's last
// live connection, and release the send queue. It is idempotent; concurrent
// disconnect and transport-error signals collapse into one run.
func (g *Gateway) Disconnect(c *Client) {
	c.teardown.Do(func() {
		g.rooms.RemoveAll(c.ID)
		metrics.RoomsActive.Set(float64(g.rooms.Count()))

		_, lastForUser := g.registry.Remove(c.ID)
		metrics.ConnectionsActive.Set(float64(g.registry.Count()))

		if lastForUser {
			g.presence.MarkOffline(c.UserID, c.ID)
		}
		c.closeSend()
		logger.Info("User disconnected: %s", c.UserID)
	})
}

// Dispatch decodes one inbound frame and routes it to the owning component.
// Unknown event names are ignored; malformed payloads come back to the
// sender as a scoped error and never affect other connections.
func (g *Gateway) Dispatch(c *Client, raw []byte) {
	env, err := protocol.ParseEnvelope(raw)
	if err != nil {
		logger.Debug("Dispatch parse error from connection %s: %v", c.ID, err)
		c.sendError("Invalid message format")
		return
	}

	switch env.Event {
	case protocol.EventJoinChat:
		chatID, err := env.ChatID()
		if err != nil {
			c.sendError(malformed(env.Event))
			return
		}
		g.rooms.Join(c.ID, chatID)
		metrics.RoomsActive.Set(float64(g.rooms.Count()))
		logger.Info("User %s joined chat %s", c.UserID, chatID)

	case protocol.EventLeaveChat:
		chatID, err := env.ChatID()
		if err != nil {
			c.sendError(malformed(env.Event))
			return
		}
		g.rooms.Leave(c.ID, chatID)
		metrics.RoomsActive.Set(float64(g.rooms.Count()))
		logger.Info("User %s left chat %s", c.UserID, chatID)

	case protocol.EventSendMessage:
		var payload protocol.SendMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.sendError(malformed(env.Event))
			return
		}
		g.router.Route(c, &payload)

	case protocol.EventTyping:
		var payload protocol.TypingPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.sendError(malformed(env.Event))
			return
		}
		g.typing.Notify(c, &payload)

	case protocol.EventUserOnline:
		// Client-driven presence refresh. The payload userId is not trusted;
		// presence always follows the authenticated user.
		g.presence.MarkOnline(c.UserID, c.ID)

	case protocol.EventUserOffline:
		g.presence.MarkOffline(c.UserID, c.ID)

	default:
		logger.Debug("Ignoring unknown event %q from connection %s", env.Event, c.ID)
	}
}

// Rooms exposes the room membership manager.
func (g *Gateway) Rooms() *Rooms {
	return g.rooms
}

// Registry exposes the session registry.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Presence exposes the presence broadcaster.
func (g *Gateway) Presence() *PresenceBroadcaster {
	return g.presence
}

func malformed(event string) string {
	return fmt.Sprintf("Malformed %s payload", event)
}
