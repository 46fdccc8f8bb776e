package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestOutboxDropsOldest(t *testing.T) {
	o := newOutbox(2)
	o.push(Undo("1"))
	o.push(Undo("2"))
	dropped, overflow := o.push(Undo("3"))
	if !overflow || dropped.ID != "1" {
		t.Fatalf("push on full queue: dropped=%v overflow=%v", dropped.ID, overflow)
	}
	for _, want := range []string{"2", "3"} {
		m, ok := o.take()
		if !ok || m.ID != want {
			t.Fatalf("take = %v, %v; want %s", m.ID, ok, want)
		}
	}
	if _, ok := o.take(); ok {
		t.Fatal("take on empty queue succeeded")
	}
}

func TestOutboxRequeue(t *testing.T) {
	o := newOutbox(2)
	o.push(Undo("1"))
	o.push(Undo("2"))
	m, _ := o.take()
	o.requeue(m)
	if first, _ := o.take(); first.ID != "1" {
		t.Fatalf("requeued message not at head: %s", first.ID)
	}
}

// fakeCoordinator upgrades every request, records what it reads and answers
// a join with an empty init.
type fakeCoordinator struct {
	t        *testing.T
	received chan Message
	conns    chan *websocket.Conn
}

func (f *fakeCoordinator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	f.conns <- conn
	for {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
		if m.Type == TypeJoin {
			_ = conn.WriteJSON(Init(m.Room, nil))
		}
		f.received <- m
	}
}

func startLink(t *testing.T) (*Link, *fakeCoordinator, context.CancelFunc) {
	t.Helper()
	fc := &fakeCoordinator{t: t, received: make(chan Message, 16), conns: make(chan *websocket.Conn, 4)}
	srv := httptest.NewServer(fc)
	t.Cleanup(srv.Close)

	link := NewLink(LinkOptions{
		URL:         "ws" + strings.TrimPrefix(srv.URL, "http"),
		Room:        "abc",
		Client:      "c1",
		BaseBackoff: 10 * time.Millisecond,
		MaxBackoff:  20 * time.Millisecond,
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go link.Run(ctx)
	t.Cleanup(cancel)
	return link, fc, cancel
}

func expect(t *testing.T, ch <-chan Message, typ string) Message {
	t.Helper()
	select {
	case m := <-ch:
		if m.Type != typ {
			t.Fatalf("got %s message, want %s", m.Type, typ)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", typ)
	}
	return Message{}
}

func TestLinkJoinsBeforeFlushing(t *testing.T) {
	link, fc, _ := startLink(t)
	// queued before any connection exists
	link.Send(Undo("early"))

	join := expect(t, fc.received, TypeJoin)
	if join.Room != "abc" || join.Client != "c1" {
		t.Fatalf("join = %+v", join)
	}
	if m := expect(t, fc.received, TypeUndo); m.ID != "early" {
		t.Fatalf("flushed %+v", m)
	}
	expect(t, link.Inbound(), TypeInit)
}

func TestLinkRejoinsAfterDrop(t *testing.T) {
	link, fc, _ := startLink(t)
	expect(t, fc.received, TypeJoin)
	expect(t, link.Inbound(), TypeInit)

	conn := <-fc.conns
	conn.Close()

	expect(t, fc.received, TypeJoin)
	expect(t, link.Inbound(), TypeInit)

	link.Send(Undo("after"))
	if m := expect(t, fc.received, TypeUndo); m.ID != "after" {
		t.Fatalf("sent %+v", m)
	}
}
