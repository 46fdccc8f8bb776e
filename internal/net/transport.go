package net

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Status is the connection state reported by a Link.
type Status int

const (
	Disconnected Status = iota
	Connected
)

func (s Status) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

type LinkOptions struct {
	URL    string
	Room   string
	Client string

	// QueueSize bounds the outbound queue. When full the oldest message is
	// dropped.
	QueueSize   int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (o *LinkOptions) defaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 250 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 10 * time.Second
	}
}

// Link is the client side of the replication channel. It keeps a websocket
// to the coordinator open, joining the room on every (re)connect, and never
// blocks the sender: outbound messages wait in a bounded queue until a
// connection is available.
type Link struct {
	opt    LinkOptions
	dialer *websocket.Dialer
	logger *slog.Logger

	outbox  *outbox
	inbound chan Message
	status  chan Status
}

func NewLink(opt LinkOptions, logger *slog.Logger) *Link {
	opt.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{
		opt:     opt,
		dialer:  websocket.DefaultDialer,
		logger:  logger.With("component", "net", "room", opt.Room),
		outbox:  newOutbox(opt.QueueSize),
		inbound: make(chan Message, 64),
		status:  make(chan Status, 4),
	}
}

// Send enqueues m for delivery.
func (l *Link) Send(m Message) {
	if dropped, ok := l.outbox.push(m); ok {
		l.logger.Warn("outbound queue full, dropped oldest message", "type", dropped.Type)
	}
}

// Inbound delivers every message received from the coordinator, in order.
func (l *Link) Inbound() <-chan Message { return l.inbound }

// Status reports connection changes. Updates are dropped while the reader
// is behind.
func (l *Link) Status() <-chan Status { return l.status }

// Pending is the number of queued outbound messages.
func (l *Link) Pending() int { return l.outbox.len() }

// Run connects and reconnects until ctx is done.
func (l *Link) Run(ctx context.Context) error {
	attempt := 0
	for {
		err := l.connectAndServe(ctx, func() { attempt = 0 })
		if ctx.Err() != nil {
			return nil
		}
		backoff := l.opt.BaseBackoff * time.Duration(1<<min(attempt, 16))
		if backoff > l.opt.MaxBackoff {
			backoff = l.opt.MaxBackoff
		}
		attempt++
		l.logger.Warn("link down, retrying", "err", err, "in", backoff)

		t := time.NewTimer(backoff)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil
		}
	}
}

func (l *Link) connectAndServe(ctx context.Context, connected func()) error {
	conn, _, err := l.dialer.DialContext(ctx, l.opt.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Join(l.opt.Room, l.opt.Client)); err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}
	connected()
	l.setStatus(Connected)
	defer l.setStatus(Disconnected)
	l.logger.Info("joined room", "url", l.opt.URL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		readErr <- l.readLoop(ctx, conn)
		cancel()
	}()

	err = l.writeLoop(ctx, conn)
	// unblock the reader
	_ = conn.Close()
	wg.Wait()
	if rerr := <-readErr; rerr != nil && err == nil {
		err = rerr
	}
	return err
}

func (l *Link) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		m, err := Decode(data)
		if err != nil {
			l.logger.Warn("dropping inbound frame", "err", err)
			continue
		}
		select {
		case l.inbound <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Link) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		for {
			m, ok := l.outbox.take()
			if !ok {
				break
			}
			if err := conn.WriteJSON(m); err != nil {
				// retried on the next connection
				l.outbox.requeue(m)
				return fmt.Errorf("write: %w", err)
			}
		}
		select {
		case <-l.outbox.ready:
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Link) setStatus(s Status) {
	select {
	case l.status <- s:
	default:
	}
}

// outbox is a bounded FIFO that drops its oldest entry on overflow.
type outbox struct {
	mu    sync.Mutex
	items []Message
	max   int
	ready chan struct{}
}

func newOutbox(max int) *outbox {
	return &outbox{max: max, ready: make(chan struct{}, 1)}
}

func (o *outbox) push(m Message) (dropped Message, overflow bool) {
	o.mu.Lock()
	if len(o.items) == o.max {
		dropped, overflow = o.items[0], true
		o.items = o.items[1:]
	}
	o.items = append(o.items, m)
	o.mu.Unlock()
	select {
	case o.ready <- struct{}{}:
	default:
	}
	return dropped, overflow
}

func (o *outbox) take() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.items) == 0 {
		return Message{}, false
	}
	m := o.items[0]
	o.items = o.items[1:]
	return m, true
}

// requeue puts m back at the head unless newer messages filled the queue.
func (o *outbox) requeue(m Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.items) < o.max {
		o.items = append([]Message{m}, o.items...)
	}
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}
