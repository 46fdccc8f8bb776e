package geom

import "math"

// Point is a position in either device space or canvas space.
// Which one is implied by the caller.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point    { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point    { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Mul(k float64) Point  { return Point{X: p.X * k, Y: p.Y * k} }
func (p Point) Div(k float64) Point  { return Point{X: p.X / k, Y: p.Y / k} }
func (p Point) Dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }
func (p Point) Equal(q Point) bool   { return p.X == q.X && p.Y == q.Y }
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Zoom factors of the tool box buttons.
const (
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9

	MinScale = 0.05
	MaxScale = 20.0
)

// Transform is the local view state: a scale factor and a canvas-space
// translation. It is never replicated.
type Transform struct {
	Scale  float64 `json:"scale"`
	Offset Point   `json:"offset"`
}

// Identity is the transform of a freshly opened board.
func Identity() Transform { return Transform{Scale: 1} }

// Valid reports whether the scale is a usable positive number.
func (t Transform) Valid() bool {
	return t.Scale > 0 && !math.IsInf(t.Scale, 0) && !math.IsNaN(t.Scale)
}

// ToCanvasSpace maps a device point into canvas space: p/scale - offset.
func ToCanvasSpace(p Point, t Transform) Point {
	return p.Div(t.Scale).Sub(t.Offset)
}

// ToDeviceSpace is the inverse of ToCanvasSpace: (c + offset) * scale.
func ToDeviceSpace(c Point, t Transform) Point {
	return c.Add(t.Offset).Mul(t.Scale)
}

// Pan moves the view so that content follows the pointer from one device
// point to another.
func (t Transform) Pan(from, to Point) Transform {
	t.Offset = t.Offset.Add(to.Sub(from).Div(t.Scale))
	return t
}

// Zoom multiplies the scale by factor, clamped to [MinScale, MaxScale].
// Non-positive factors leave the transform unchanged.
func (t Transform) Zoom(factor float64) Transform {
	if factor <= 0 || math.IsNaN(factor) {
		return t
	}
	t.Scale = clamp(t.Scale*factor, MinScale, MaxScale)
	return t
}

func (t Transform) ZoomIn() Transform  { return t.Zoom(ZoomInFactor) }
func (t Transform) ZoomOut() Transform { return t.Zoom(ZoomOutFactor) }

// WidthOnScreen converts a stroke size into the width used inside the scaled
// canvas, so the stroke keeps its on-screen thickness at every zoom level.
func (t Transform) WidthOnScreen(size float64) float64 {
	return size / t.Scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
