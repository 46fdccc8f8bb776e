// Package coordinator relays a room's replication messages between
// participants and keeps the authoritative action log of every room.
package coordinator

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	bnet "SharedBoard/internal/net"
	"SharedBoard/internal/state"
)

// roomRedoLimit bounds how many undone actions a room remembers. Room logs
// never see a local append, so nothing else clears their redo stack.
const roomRedoLimit = 1024

// Room is one shared canvas. All mutations of its log and the broadcasts
// they cause happen under mu, so every connection sees the same order.
type Room struct {
	ID string

	mu    sync.Mutex
	log   *state.Log
	conns map[*Conn]struct{}
}

func (r *Room) Snapshot() []state.Action { return r.log.Snapshot() }

func (r *Room) broadcastLocked(m bnet.Message) {
	for c := range r.conns {
		c.enqueue(m)
	}
}

type Hub struct {
	presence  Presence
	publisher Publisher
	logger    *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub(p Presence, pub Publisher, logger *slog.Logger) *Hub {
	if p == nil {
		p = NewMemoryPresence()
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		presence:  p,
		publisher: pub,
		logger:    logger.With("component", "coordinator"),
		rooms:     make(map[string]*Room),
	}
}

// Room returns the room with the given id, creating it on first use.
func (h *Hub) Room(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	if !ok {
		log := state.NewLog(h.logger.With("room", id))
		log.LimitRedo(roomRedoLimit)
		r = &Room{ID: id, log: log, conns: make(map[*Conn]struct{})}
		h.rooms[id] = r
		h.logger.Info("room created", "room", id)
	}
	return r
}

// Lookup returns an existing room.
func (h *Hub) Lookup(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Join adds c to the room and queues the snapshot as its first message.
// No broadcast can slip in between the snapshot and the registration.
func (h *Hub) Join(ctx context.Context, r *Room, c *Conn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	c.enqueue(bnet.Init(r.ID, r.log.Snapshot()))
	r.mu.Unlock()

	if err := h.presence.Add(ctx, r.ID, c.client); err != nil {
		h.logger.Warn("presence add failed", "room", r.ID, "client", c.client, "err", err)
	}
	h.publish(ctx, RoomEvent{Type: EventJoined, Room: r.ID, Client: c.client})
	h.broadcastPresence(ctx, r)
}

// Touch renews c's presence in the room. Connections call it on every pong
// so that members outlive the presence TTL while they stay connected.
func (h *Hub) Touch(ctx context.Context, r *Room, c *Conn) {
	if err := h.presence.Add(ctx, r.ID, c.client); err != nil {
		h.logger.Warn("presence refresh failed", "room", r.ID, "client", c.client, "err", err)
	}
}

func (h *Hub) Leave(ctx context.Context, r *Room, c *Conn) {
	r.mu.Lock()
	delete(r.conns, c)
	others := false
	for o := range r.conns {
		if o.client == c.client {
			others = true
			break
		}
	}
	r.mu.Unlock()

	if !others {
		if err := h.presence.Remove(ctx, r.ID, c.client); err != nil {
			h.logger.Warn("presence remove failed", "room", r.ID, "client", c.client, "err", err)
		}
	}
	h.publish(ctx, RoomEvent{Type: EventLeft, Room: r.ID, Client: c.client})
	h.broadcastPresence(ctx, r)
}

// Apply runs an action, undo or redo from c against the room log and
// echoes it to every participant, origin included. Notices that change
// nothing are dropped silently.
func (h *Hub) Apply(ctx context.Context, r *Room, c *Conn, m bnet.Message) {
	var evt RoomEvent
	r.mu.Lock()
	switch m.Type {
	case bnet.TypeAction:
		a := *m.Action
		if a.Author == "" {
			a.Author = c.client
		}
		if err := a.Validate(); err != nil {
			r.mu.Unlock()
			c.enqueue(bnet.Error(err.Error()))
			return
		}
		if !r.log.Receive(a) {
			r.mu.Unlock()
			return
		}
		r.broadcastLocked(bnet.NewAction(a))
		evt = RoomEvent{Type: EventAction, ActionID: a.ID, Tool: a.Tool}
	case bnet.TypeUndo:
		if _, ok := r.log.RemoveByID(m.ID); !ok {
			r.mu.Unlock()
			return
		}
		r.broadcastLocked(m)
		evt = RoomEvent{Type: EventUndo, ActionID: m.ID}
	case bnet.TypeRedo:
		if err := m.Action.Validate(); err != nil {
			r.mu.Unlock()
			c.enqueue(bnet.Error(err.Error()))
			return
		}
		if !r.log.Insert(*m.Action) {
			r.mu.Unlock()
			return
		}
		r.broadcastLocked(m)
		evt = RoomEvent{Type: EventRedo, ActionID: m.Action.ID, Tool: m.Action.Tool}
	default:
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	evt.Room, evt.Client = r.ID, c.client
	h.publish(ctx, evt)
}

func (h *Hub) broadcastPresence(ctx context.Context, r *Room) {
	members, err := h.presence.Members(ctx, r.ID)
	if err != nil {
		h.logger.Warn("presence lookup failed", "room", r.ID, "err", err)
		return
	}
	r.mu.Lock()
	r.broadcastLocked(bnet.Presence(r.ID, members))
	r.mu.Unlock()
}

func (h *Hub) publish(ctx context.Context, evt RoomEvent) {
	evt.At = time.Now().UTC()
	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if err := h.publisher.Publish(ctx, evt); err != nil {
		h.logger.Warn("room event dropped", "type", evt.Type, "room", evt.Room, "err", err)
	}
}
