package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	bnet "SharedBoard/internal/net"
)

const (
	sendQueue  = 256
	writeWait  = 10 * time.Second
	joinWait   = 10 * time.Second
	maxMessage = 4 << 20

	defaultPingPeriod = 30 * time.Second
)

// Conn is one participant connection. Writes go through a single loop so
// each connection receives messages in the order they were queued.
type Conn struct {
	ws     *websocket.Conn
	hub    *Hub
	client string
	logger *slog.Logger

	// A ping goes out every pingPeriod; a peer silent for two periods is
	// dropped. Every pong renews the participant's presence.
	pingPeriod time.Duration

	send      chan bnet.Message
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(ws *websocket.Conn, hub *Hub, logger *slog.Logger, pingPeriod time.Duration) *Conn {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	return &Conn{
		ws:         ws,
		hub:        hub,
		logger:     logger,
		pingPeriod: pingPeriod,
		send:       make(chan bnet.Message, sendQueue),
		closed:     make(chan struct{}),
	}
}

// enqueue never blocks. A participant that cannot keep up is disconnected;
// on reconnect it receives a fresh snapshot.
func (c *Conn) enqueue(m bnet.Message) {
	select {
	case <-c.closed:
	case c.send <- m:
	default:
		c.logger.Warn("send queue full, dropping connection", "client", c.client)
		c.close()
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.ws.Close()
	})
}

// serve runs the connection until it fails: it waits for the join, then
// applies every message to the room.
func (c *Conn) serve(ctx context.Context, roomID string) {
	defer c.close()
	c.ws.SetReadLimit(maxMessage)

	_ = c.ws.SetReadDeadline(time.Now().Add(joinWait))
	join, err := c.read()
	if err != nil {
		c.logger.Warn("no join received", "err", err)
		return
	}
	if join.Type != bnet.TypeJoin || join.Room != roomID {
		c.logger.Warn("bad join", "type", join.Type, "room", join.Room)
		// the write loop is not running yet, so this is the only writer
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteJSON(bnet.Error("expected join for room " + roomID))
		return
	}
	c.client = join.Client
	logger := c.logger.With("client", c.client)

	room := c.hub.Room(roomID)
	c.extendDeadline()
	c.ws.SetPongHandler(func(string) error {
		c.extendDeadline()
		c.hub.Touch(ctx, room, c)
		return nil
	})
	go c.writeLoop()

	c.hub.Join(ctx, room, c)
	defer c.hub.Leave(context.WithoutCancel(ctx), room, c)
	logger.Info("participant joined")

	for {
		m, err := c.read()
		if err != nil {
			logger.Info("participant left", "err", err)
			return
		}
		c.extendDeadline()
		switch m.Type {
		case bnet.TypeAction, bnet.TypeUndo, bnet.TypeRedo:
			c.hub.Apply(ctx, room, c, m)
		default:
			c.enqueue(bnet.Error("unexpected " + m.Type))
		}
	}
}

func (c *Conn) extendDeadline() {
	_ = c.ws.SetReadDeadline(time.Now().Add(2 * c.pingPeriod))
}

// read returns the next well-formed message. Malformed frames are answered
// with an error and skipped.
func (c *Conn) read() (bnet.Message, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return bnet.Message{}, err
		}
		m, err := bnet.Decode(data)
		if err != nil {
			c.logger.Warn("dropping frame", "err", err)
			c.enqueue(bnet.Error(err.Error()))
			continue
		}
		return m, nil
	}
}

func (c *Conn) writeLoop() {
	ping := time.NewTicker(c.pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn("ping failed", "err", err)
				c.close()
				return
			}
		case m := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(m); err != nil {
				c.logger.Warn("write failed", "err", err)
				c.close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
