package render

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"SharedBoard/internal/geom"
)

// Raster draws into an offscreen gg context. The device pixel ratio is
// applied before the view transform so a DPR of 2 renders at double
// resolution with the same layout.
type Raster struct {
	dc  *gg.Context
	dpr float64
	err error
}

func NewRaster(width, height int, dpr float64) *Raster {
	if dpr <= 0 {
		dpr = 1
	}
	w := int(float64(width) * dpr)
	h := int(float64(height) * dpr)
	return &Raster{dc: gg.NewContext(w, h), dpr: dpr}
}

func (r *Raster) Begin(background string, t geom.Transform) error {
	r.err = nil
	r.dc.Identity()
	r.dc.ClearWithColor(gg.Hex(background))
	r.dc.Scale(r.dpr, r.dpr)
	r.dc.Scale(t.Scale, t.Scale)
	r.dc.Translate(t.Offset.X, t.Offset.Y)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	return nil
}

func (r *Raster) pen(s Style) {
	r.dc.SetColor(ParseColor(s.Color))
	r.dc.SetLineWidth(s.Width)
}

func (r *Raster) stroke(shape string) {
	if err := r.dc.Stroke(); err != nil && r.err == nil {
		r.err = fmt.Errorf("stroke %s: %w", shape, err)
	}
}

func (r *Raster) Polyline(points []geom.Point, s Style) {
	r.pen(s)
	r.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.stroke("polyline")
}

func (r *Raster) Rect(origin geom.Point, w, h float64, s Style) {
	r.pen(s)
	r.dc.DrawRectangle(origin.X, origin.Y, w, h)
	r.stroke("rect")
}

func (r *Raster) Circle(center geom.Point, radius float64, s Style) {
	r.pen(s)
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.stroke("circle")
}

// End reports the first stroke failure of the frame, if any.
func (r *Raster) End() error {
	return r.err
}

func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}
