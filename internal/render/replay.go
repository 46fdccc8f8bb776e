// Package render rebuilds the visible canvas from the action log.
//
// Nothing is retained between frames: every call to Replay clears the target
// surface and redraws the whole log under the given view transform, followed
// by the in-progress action if there is one.
package render

import (
	"errors"
	"image/color"

	"github.com/gogpu/gg"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/state"
)

var ErrBadTransform = errors.New("render: transform scale must be positive")

// Style is the pen used for one action.
type Style struct {
	Color string
	// Width is in canvas units; surfaces scale it along with the geometry.
	Width float64
}

// Surface is a drawing target. Coordinates passed to the shape methods are
// in canvas space; the surface applies the transform given to Begin.
type Surface interface {
	Begin(background string, t geom.Transform) error
	Polyline(points []geom.Point, s Style)
	Rect(origin geom.Point, w, h float64, s Style)
	Circle(center geom.Point, r float64, s Style)
	End() error
}

// Frame is everything one redraw needs. It is a plain value so it can be
// handed from the session loop to a UI goroutine.
type Frame struct {
	Actions   []state.Action
	Transform geom.Transform
	Overlay   *state.Action
}

func (f Frame) Draw(s Surface) error {
	return Replay(s, f.Actions, f.Transform, f.Overlay)
}

// Replay clears s and draws actions in log order, then the overlay.
func Replay(s Surface, actions []state.Action, t geom.Transform, overlay *state.Action) error {
	if !t.Valid() {
		return ErrBadTransform
	}
	if err := s.Begin(state.Background, t); err != nil {
		return err
	}
	for _, a := range actions {
		Draw(s, a, t)
	}
	if overlay != nil {
		Draw(s, *overlay, t)
	}
	return s.End()
}

// Draw emits the draw calls for a single action. Degenerate geometry emits
// nothing.
func Draw(s Surface, a state.Action, t geom.Transform) {
	if len(a.Path) == 0 {
		return
	}
	style := Style{Color: a.StrokeColor(), Width: t.WidthOnScreen(a.StrokeWidth)}
	first, last := a.First(), a.Last()

	switch a.Tool {
	case state.ToolPencil, state.ToolEraser:
		if zeroLength(a.Path) {
			return
		}
		s.Polyline(a.Path, style)
	case state.ToolRectangle:
		w, h := last.X-first.X, last.Y-first.Y
		if w == 0 || h == 0 {
			return
		}
		s.Rect(first, w, h, style)
	case state.ToolEllipse:
		r := first.Dist(last)
		if r == 0 {
			return
		}
		s.Circle(first, r, style)
	}
}

func zeroLength(path []geom.Point) bool {
	for _, p := range path[1:] {
		if !p.Equal(path[0]) {
			return false
		}
	}
	return true
}

// ParseColor converts a #rrggbb string into an opaque colour. Malformed
// strings come back black.
func ParseColor(hex string) color.NRGBA {
	c := gg.Hex(hex)
	c.A = 1
	return c.Color().(color.NRGBA)
}

// NormalizeRect turns a rectangle dragged up or left into one with a
// top-left origin and non-negative size.
func NormalizeRect(origin geom.Point, w, h float64) (geom.Point, float64, float64) {
	if w < 0 {
		origin.X += w
		w = -w
	}
	if h < 0 {
		origin.Y += h
		h = -h
	}
	return origin, w, h
}
