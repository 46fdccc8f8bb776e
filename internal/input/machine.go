// Package input turns pointer events into candidate actions or view pans.
package input

import (
	"fmt"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/state"
)

type Mode int

const (
	Idle Mode = iota
	Drawing
	Panning
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Panning:
		return "panning"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Defaults of a fresh tool box.
const (
	DefaultColor = "#000000"
	DefaultSize  = 5.0
)

// Outcome tells the caller what an event produced.
type Outcome struct {
	// Commit is a finished action to append and broadcast.
	Commit *state.Action
	// Redraw asks for a full replay. Overlay, when set, is drawn on top.
	Redraw  bool
	Overlay *state.Action
	// Transform is the view after the event.
	Transform geom.Transform
}

// Machine holds the gesture state and the local view transform. It is not
// safe for concurrent use; the session loop owns it.
type Machine struct {
	mode Mode
	path []geom.Point
	last geom.Point

	// pen captured at pointer-down; tool changes mid-gesture apply to the next one
	gesture state.Tool
	color   string
	size    float64

	tool     state.Tool
	penColor string
	penSize  float64
	view     geom.Transform
	factory  *state.Factory
}

func New(factory *state.Factory) *Machine {
	return &Machine{
		tool:     state.ToolPencil,
		penColor: DefaultColor,
		penSize:  DefaultSize,
		view:     geom.Identity(),
		factory:  factory,
	}
}

func (m *Machine) Mode() Mode                { return m.mode }
func (m *Machine) Tool() state.Tool          { return m.tool }
func (m *Machine) Color() string             { return m.penColor }
func (m *Machine) Size() float64             { return m.penSize }
func (m *Machine) Transform() geom.Transform { return m.view }

func (m *Machine) SetTool(t state.Tool) error {
	if t != state.ToolPan && !t.Drawable() {
		return fmt.Errorf("unknown tool %q", t)
	}
	m.tool = t
	return nil
}

func (m *Machine) SetColor(c string) { m.penColor = c }

func (m *Machine) SetSize(size float64) error {
	if !(size > 0) {
		return fmt.Errorf("size must be positive, got %v", size)
	}
	m.penSize = size
	return nil
}

// SetTransform replaces the view, e.g. after a zoom command.
func (m *Machine) SetTransform(t geom.Transform) error {
	if !t.Valid() {
		return fmt.Errorf("invalid transform scale %v", t.Scale)
	}
	m.view = t
	return nil
}

// PointerDown starts a gesture at a device-space point.
func (m *Machine) PointerDown(p geom.Point) Outcome {
	if m.mode != Idle {
		return m.outcome(false, nil)
	}
	if m.tool == state.ToolPan {
		m.mode = Panning
		m.last = p
		return m.outcome(false, nil)
	}
	m.mode = Drawing
	m.gesture, m.color, m.size = m.tool, m.penColor, m.penSize
	m.path = []geom.Point{geom.ToCanvasSpace(p, m.view)}
	return m.outcome(false, nil)
}

func (m *Machine) PointerMove(p geom.Point) Outcome {
	switch m.mode {
	case Drawing:
		m.path = append(m.path, geom.ToCanvasSpace(p, m.view))
		overlay := m.candidate()
		return m.outcome(true, &overlay)
	case Panning:
		m.view = m.view.Pan(m.last, p)
		m.last = p
		return m.outcome(true, nil)
	}
	return m.outcome(false, nil)
}

// PointerUp ends the gesture. A stroke with more than one sampled point is
// committed; a single point is treated as a click and dropped.
func (m *Machine) PointerUp(geom.Point) Outcome {
	return m.finish()
}

// PointerLeave behaves like PointerUp.
func (m *Machine) PointerLeave() Outcome {
	return m.finish()
}

func (m *Machine) finish() Outcome {
	mode := m.mode
	m.mode = Idle
	if mode != Drawing {
		return m.outcome(false, nil)
	}
	defer func() { m.path = nil }()
	if len(m.path) <= 1 {
		return m.outcome(true, nil)
	}
	a := m.factory.New(m.gesture, m.color, m.size, m.path)
	out := m.outcome(true, nil)
	out.Commit = &a
	return out
}

// Overlay returns the in-progress stroke, or nil when no stroke is being
// drawn.
func (m *Machine) Overlay() *state.Action {
	if m.mode != Drawing {
		return nil
	}
	a := m.candidate()
	return &a
}

// candidate is the in-progress action drawn as overlay. It has no id.
func (m *Machine) candidate() state.Action {
	return state.Action{
		Tool:        m.gesture,
		Color:       m.color,
		StrokeWidth: m.size,
		Path:        append([]geom.Point(nil), m.path...),
	}
}

func (m *Machine) outcome(redraw bool, overlay *state.Action) Outcome {
	return Outcome{Redraw: redraw, Overlay: overlay, Transform: m.view}
}
