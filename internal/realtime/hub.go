package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"taskhive/internal/domain"
	"taskhive/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MemberSource lists the user ids collaborating on an entity, owner
// included. The hub needs it to fan typing signals out to the right rooms.
type MemberSource interface {
	ListMemberIDs(ctx context.Context, ref domain.EntityRef) ([]uint64, error)
}

// Event is the envelope every websocket frame uses, both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub owns this process's live sockets. Cross-process presence truth lives
// in the shared store via the Tracker; the hub only ever reaches sockets it
// holds locally and silently no-ops for everyone else.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]map[string]*client // userID -> connID -> client

	tracker *presence.Tracker
	typing  *presence.TypingThrottle
	members MemberSource

	upgrader websocket.Upgrader
}

func NewHub(tracker *presence.Tracker, typing *presence.TypingThrottle) *Hub {
	return &Hub{
		clients: make(map[uint64]map[string]*client),
		tracker: tracker,
		typing:  typing,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// auth happened in middleware, origin is checked by CORS upstream
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SetMemberSource wires the membership lookup in after construction; the
// collaboration service is built later in the dependency graph.
func (h *Hub) SetMemberSource(members MemberSource) {
	h.members = members
}

// ServeWS upgrades the request and runs the connection until it drops.
func (h *Hub) ServeWS(c *gin.Context) {
	userID := c.GetUint64("user_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed for user %d: %v", userID, err)
		return
	}

	cl := &client{
		hub:    h,
		conn:   conn,
		userID: userID,
		connID: uuid.NewString(),
		send:   make(chan []byte, 64),
	}

	h.register(cl)

	go cl.writePump()
	go cl.readPump()
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	if h.clients[cl.userID] == nil {
		h.clients[cl.userID] = make(map[string]*client)
	}
	h.clients[cl.userID][cl.connID] = cl
	h.mu.Unlock()

	if err := h.tracker.Connect(context.Background(), cl.userID, cl.connID); err != nil {
		log.Printf("[WS] failed to register presence for user %d conn %s: %v", cl.userID, cl.connID, err)
	}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if conns := h.clients[cl.userID]; conns != nil {
		if _, ok := conns[cl.connID]; ok {
			delete(conns, cl.connID)
			close(cl.send)
		}
		if len(conns) == 0 {
			delete(h.clients, cl.userID)
		}
	}
	h.mu.Unlock()

	// best effort; ghost pruning covers the crash path
	if err := h.tracker.Disconnect(context.Background(), cl.userID, cl.connID); err != nil {
		log.Printf("[WS] failed to clean presence for user %d conn %s: %v", cl.userID, cl.connID, err)
	}
}

// SendToUser delivers an event to every local socket the user holds.
// No sockets, no error: the durable notification record is the system of
// record, this channel is an amplifier.
func (h *Hub) SendToUser(userID uint64, eventName string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] failed to encode %s payload: %v", eventName, err)
		return
	}
	frame, err := json.Marshal(Event{Event: eventName, Data: data})
	if err != nil {
		log.Printf("[WS] failed to encode %s frame: %v", eventName, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cl := range h.clients[userID] {
		select {
		case cl.send <- frame:
		default:
			// slow consumer, drop the frame rather than block the hub
			log.Printf("[WS] dropping %s frame for user %d conn %s", eventName, userID, cl.connID)
		}
	}
}

type typingPayload struct {
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   uint64            `json:"entity_id"`
	UserID     uint64            `json:"user_id,omitempty"`
}

// handleTyping gates a typing signal through the throttle, then tells
// every other collaborator of the entity.
func (h *Hub) handleTyping(ctx context.Context, from *client, raw json.RawMessage) {
	var p typingPayload
	if err := json.Unmarshal(raw, &p); err != nil || !p.EntityType.Valid() || h.members == nil {
		return
	}
	ref := domain.EntityRef{Type: p.EntityType, ID: p.EntityID}

	if !h.typing.ShouldBroadcast(ctx, from.userID, ref) {
		return
	}

	memberIDs, err := h.members.ListMemberIDs(ctx, ref)
	if err != nil {
		log.Printf("[WS] failed to list members for %s %d: %v", ref.Type, ref.ID, err)
		return
	}

	out := typingPayload{EntityType: ref.Type, EntityID: ref.ID, UserID: from.userID}
	for _, id := range memberIDs {
		if id == from.userID {
			continue
		}
		h.SendToUser(id, "user_typing", out)
	}
}
