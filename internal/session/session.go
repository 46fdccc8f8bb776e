// Package session runs one participant's board: it owns the action log, the
// input machine and the view, and applies local and remote events on a
// single goroutine.
package session

import (
	"context"
	"errors"
	"log/slog"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/input"
	bnet "SharedBoard/internal/net"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
)

var ErrStopped = errors.New("session stopped")

// Link is the replication channel as seen by a session.
type Link interface {
	Send(bnet.Message)
	Inbound() <-chan bnet.Message
	Status() <-chan bnet.Status
}

type Options struct {
	Room   string
	Client string

	// Link may be nil for an offline board.
	Link    Link
	Factory *state.Factory
	Logger  *slog.Logger

	// Redraw receives a full frame after every change. It runs on the
	// session goroutine and must not block.
	Redraw     func(render.Frame)
	OnStatus   func(bnet.Status)
	OnPresence func(members []string)
}

type Session struct {
	room   string
	client string

	log     *state.Log
	machine *input.Machine
	link    Link
	logger  *slog.Logger

	events chan event
	done   chan struct{}

	redraw     func(render.Frame)
	onStatus   func(bnet.Status)
	onPresence func([]string)
}

func New(opt Options) *Session {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Client == "" {
		opt.Client = state.NewClientID()
	}
	if opt.Factory == nil {
		opt.Factory = state.NewFactory(opt.Client)
	}
	logger := opt.Logger.With("room", opt.Room, "client", opt.Client)
	return &Session{
		room:       opt.Room,
		client:     opt.Client,
		log:        state.NewLog(logger),
		machine:    input.New(opt.Factory),
		link:       opt.Link,
		logger:     logger.With("component", "session"),
		events:     make(chan event, 256),
		done:       make(chan struct{}),
		redraw:     opt.Redraw,
		onStatus:   opt.OnStatus,
		onPresence: opt.OnPresence,
	}
}

func (s *Session) Room() string   { return s.room }
func (s *Session) Client() string { return s.client }

// Log exposes the action log for read-only use such as export.
func (s *Session) Log() *state.Log { return s.log }

// Run processes events until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	var inbound <-chan bnet.Message
	var status <-chan bnet.Status
	if s.link != nil {
		inbound, status = s.link.Inbound(), s.link.Status()
	}
	s.logger.Info("session started")
	s.emit(nil)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopped")
			return nil
		case ev := <-s.events:
			ev.apply(s)
		case m := <-inbound:
			s.receive(m)
		case st := <-status:
			s.logger.Info("link status changed", "status", st)
			if s.onStatus != nil {
				s.onStatus(st)
			}
		}
	}
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Frame returns the current frame as computed on the session goroutine.
func (s *Session) Frame(ctx context.Context) (render.Frame, error) {
	reply := make(chan render.Frame, 1)
	select {
	case s.events <- frameQuery{reply: reply}:
	case <-s.done:
		return render.Frame{}, ErrStopped
	case <-ctx.Done():
		return render.Frame{}, ctx.Err()
	}
	select {
	case f := <-reply:
		return f, nil
	case <-s.done:
		return render.Frame{}, ErrStopped
	case <-ctx.Done():
		return render.Frame{}, ctx.Err()
	}
}

func (s *Session) PointerDown(p geom.Point) { s.post(pointer{kind: down, p: p}) }
func (s *Session) PointerMove(p geom.Point) { s.post(pointer{kind: move, p: p}) }
func (s *Session) PointerUp(p geom.Point)   { s.post(pointer{kind: up, p: p}) }
func (s *Session) PointerLeave()            { s.post(pointer{kind: leave}) }

func (s *Session) SetTool(t state.Tool) { s.post(setTool{t}) }
func (s *Session) SetColor(c string)    { s.post(setColor{c}) }
func (s *Session) SetSize(size float64) { s.post(setSize{size}) }
func (s *Session) Undo()                { s.post(undo{}) }
func (s *Session) Redo()                { s.post(redo{}) }
func (s *Session) Zoom(factor float64)  { s.post(zoom{factor}) }
func (s *Session) ZoomIn()              { s.Zoom(geom.ZoomInFactor) }
func (s *Session) ZoomOut()             { s.Zoom(geom.ZoomOutFactor) }
func (s *Session) ResetView()           { s.post(resetView{}) }
func (s *Session) Refresh()             { s.post(refresh{}) }

// receive handles one inbound replication message. Messages about ids that
// were already applied change nothing.
func (s *Session) receive(m bnet.Message) {
	changed := false
	switch m.Type {
	case bnet.TypeInit:
		s.log.Load(m.Actions)
		changed = true
	case bnet.TypeAction:
		changed = s.log.Receive(*m.Action)
	case bnet.TypeUndo:
		_, changed = s.log.RemoveByID(m.ID)
	case bnet.TypeRedo:
		changed = s.log.Insert(*m.Action)
	case bnet.TypePresence:
		if s.onPresence != nil {
			s.onPresence(m.Members)
		}
	case bnet.TypeError:
		s.logger.Warn("coordinator reported an error", "content", m.Content)
	default:
		s.logger.Warn("ignoring message", "type", m.Type)
	}
	if changed {
		s.emit(s.machine.Overlay())
	}
}

func (s *Session) send(m bnet.Message) {
	if s.link != nil {
		s.link.Send(m)
	}
}

func (s *Session) handleOutcome(out input.Outcome) {
	if out.Commit != nil {
		if err := s.log.Append(*out.Commit); err != nil {
			s.logger.Warn("local action rejected", "err", err)
		} else {
			s.send(bnet.NewAction(*out.Commit))
		}
	}
	if out.Redraw {
		s.emit(out.Overlay)
	}
}

func (s *Session) frame(overlay *state.Action) render.Frame {
	return render.Frame{
		Actions:   s.log.Snapshot(),
		Transform: s.machine.Transform(),
		Overlay:   overlay,
	}
}

func (s *Session) emit(overlay *state.Action) {
	if s.redraw != nil {
		s.redraw(s.frame(overlay))
	}
}
