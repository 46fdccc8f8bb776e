package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/render"
)

// canvasSurface turns a replay into fyne canvas objects positioned in widget
// coordinates. fyne scales to the device pixel ratio itself.
type canvasSurface struct {
	size    fyne.Size
	t       geom.Transform
	objects []fyne.CanvasObject
}

func newCanvasSurface(size fyne.Size) *canvasSurface {
	return &canvasSurface{size: size}
}

func (s *canvasSurface) Begin(background string, t geom.Transform) error {
	s.t = t
	bg := canvas.NewRectangle(render.ParseColor(background))
	bg.Resize(s.size)
	s.objects = []fyne.CanvasObject{bg}
	return nil
}

func (s *canvasSurface) pos(c geom.Point) fyne.Position {
	d := geom.ToDeviceSpace(c, s.t)
	return fyne.NewPos(float32(d.X), float32(d.Y))
}

func (s *canvasSurface) width(st render.Style) float32 {
	return float32(st.Width * s.t.Scale)
}

func (s *canvasSurface) Polyline(points []geom.Point, st render.Style) {
	col := render.ParseColor(st.Color)
	for i := 1; i < len(points); i++ {
		segment := canvas.NewLine(col)
		segment.StrokeWidth = s.width(st)
		segment.Position1 = s.pos(points[i-1])
		segment.Position2 = s.pos(points[i])
		s.objects = append(s.objects, segment)
	}
}

func (s *canvasSurface) Rect(origin geom.Point, w, h float64, st render.Style) {
	origin, w, h = render.NormalizeRect(origin, w, h)
	r := canvas.NewRectangle(color.Transparent)
	r.StrokeColor = render.ParseColor(st.Color)
	r.StrokeWidth = s.width(st)
	r.Move(s.pos(origin))
	r.Resize(fyne.NewSize(float32(w*s.t.Scale), float32(h*s.t.Scale)))
	s.objects = append(s.objects, r)
}

func (s *canvasSurface) Circle(center geom.Point, radius float64, st render.Style) {
	c := canvas.NewCircle(color.Transparent)
	c.StrokeColor = render.ParseColor(st.Color)
	c.StrokeWidth = s.width(st)
	c.Position1 = s.pos(center.Sub(geom.Pt(radius, radius)))
	c.Position2 = s.pos(center.Add(geom.Pt(radius, radius)))
	s.objects = append(s.objects, c)
}

func (s *canvasSurface) End() error { return nil }
