package render

import (
	"fmt"
	"strings"

	"SharedBoard/internal/geom"
)

// Call is one recorded draw instruction.
type Call struct {
	Op     string
	Points []geom.Point
	W, H   float64
	R      float64
	Style  Style
}

func (c Call) String() string {
	switch c.Op {
	case "rect":
		return fmt.Sprintf("rect %v %gx%g %s/%g", c.Points[0], c.W, c.H, c.Style.Color, c.Style.Width)
	case "circle":
		return fmt.Sprintf("circle %v r=%g %s/%g", c.Points[0], c.R, c.Style.Color, c.Style.Width)
	case "polyline":
		return fmt.Sprintf("polyline %v %s/%g", c.Points, c.Style.Color, c.Style.Width)
	}
	return c.Op
}

// Recorder is a Surface that keeps the draw calls of the last frame instead
// of painting them. Two replicas holding the same log produce equal
// recordings.
type Recorder struct {
	Background string
	Transform  geom.Transform
	Calls      []Call
	Frames     int
}

func (r *Recorder) Begin(background string, t geom.Transform) error {
	r.Background = background
	r.Transform = t
	r.Calls = r.Calls[:0]
	return nil
}

func (r *Recorder) Polyline(points []geom.Point, s Style) {
	pts := append([]geom.Point(nil), points...)
	r.Calls = append(r.Calls, Call{Op: "polyline", Points: pts, Style: s})
}

func (r *Recorder) Rect(origin geom.Point, w, h float64, s Style) {
	r.Calls = append(r.Calls, Call{Op: "rect", Points: []geom.Point{origin}, W: w, H: h, Style: s})
}

func (r *Recorder) Circle(center geom.Point, radius float64, s Style) {
	r.Calls = append(r.Calls, Call{Op: "circle", Points: []geom.Point{center}, R: radius, Style: s})
}

func (r *Recorder) End() error {
	r.Frames++
	return nil
}

func (r *Recorder) String() string {
	lines := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}
