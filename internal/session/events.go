package session

import (
	"SharedBoard/internal/geom"
	bnet "SharedBoard/internal/net"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
)

// event is anything processed on the session goroutine.
type event interface {
	apply(s *Session)
}

type pointerKind int

const (
	down pointerKind = iota
	move
	up
	leave
)

type pointer struct {
	kind pointerKind
	p    geom.Point
}

func (e pointer) apply(s *Session) {
	switch e.kind {
	case down:
		s.handleOutcome(s.machine.PointerDown(e.p))
	case move:
		s.handleOutcome(s.machine.PointerMove(e.p))
	case up:
		s.handleOutcome(s.machine.PointerUp(e.p))
	case leave:
		s.handleOutcome(s.machine.PointerLeave())
	}
}

type setTool struct{ tool state.Tool }

func (e setTool) apply(s *Session) {
	if err := s.machine.SetTool(e.tool); err != nil {
		s.logger.Warn("tool not changed", "err", err)
	}
}

type setColor struct{ color string }

func (e setColor) apply(s *Session) { s.machine.SetColor(e.color) }

type setSize struct{ size float64 }

func (e setSize) apply(s *Session) {
	if err := s.machine.SetSize(e.size); err != nil {
		s.logger.Warn("size not changed", "err", err)
	}
}

// undo and redo act on this participant's own actions only.
type undo struct{}

func (undo) apply(s *Session) {
	a, ok := s.log.UndoLastBy(s.client)
	if !ok {
		return
	}
	s.send(bnet.Undo(a.ID))
	s.emit(s.machine.Overlay())
}

type redo struct{}

func (redo) apply(s *Session) {
	a, ok := s.log.RedoLastBy(s.client)
	if !ok {
		return
	}
	s.send(bnet.Redo(a))
	s.emit(s.machine.Overlay())
}

type zoom struct{ factor float64 }

func (e zoom) apply(s *Session) {
	if err := s.machine.SetTransform(s.machine.Transform().Zoom(e.factor)); err != nil {
		s.logger.Warn("zoom ignored", "err", err)
		return
	}
	s.emit(s.machine.Overlay())
}

type resetView struct{}

func (resetView) apply(s *Session) {
	_ = s.machine.SetTransform(geom.Identity())
	s.emit(s.machine.Overlay())
}

type refresh struct{}

func (refresh) apply(s *Session) { s.emit(s.machine.Overlay()) }

type frameQuery struct{ reply chan<- render.Frame }

func (e frameQuery) apply(s *Session) { e.reply <- s.frame(s.machine.Overlay()) }
