// Package export writes a board frame to PDF or PNG and moves snapshots in
// and out of JSON files.
package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/render"
)

// PDF is a vector surface. The page has the size of the visible canvas in
// points and the view transform is baked into the coordinates.
type PDF struct {
	pdf    *gofpdf.Fpdf
	width  float64
	height float64
	t      geom.Transform
}

func NewPDF(width, height float64) *PDF {
	// "L" would swap the custom size
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	return &PDF{pdf: p, width: width, height: height}
}

func (p *PDF) Begin(background string, t geom.Transform) error {
	p.t = t
	p.pdf.AddPage()
	p.setFill(background)
	p.pdf.Rect(0, 0, p.width, p.height, "F")
	p.pdf.SetLineCapStyle("round")
	p.pdf.SetLineJoinStyle("round")
	return p.pdf.Error()
}

func (p *PDF) setFill(hex string) {
	c := render.ParseColor(hex)
	p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func (p *PDF) pen(s render.Style) {
	c := render.ParseColor(s.Color)
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetLineWidth(s.Width * p.t.Scale)
}

func (p *PDF) device(c geom.Point) geom.Point { return geom.ToDeviceSpace(c, p.t) }

func (p *PDF) Polyline(points []geom.Point, s render.Style) {
	p.pen(s)
	first := p.device(points[0])
	p.pdf.MoveTo(first.X, first.Y)
	for _, c := range points[1:] {
		d := p.device(c)
		p.pdf.LineTo(d.X, d.Y)
	}
	p.pdf.DrawPath("D")
}

func (p *PDF) Rect(origin geom.Point, w, h float64, s render.Style) {
	p.pen(s)
	origin, w, h = render.NormalizeRect(origin, w, h)
	d := p.device(origin)
	p.pdf.Rect(d.X, d.Y, w*p.t.Scale, h*p.t.Scale, "D")
}

func (p *PDF) Circle(center geom.Point, r float64, s render.Style) {
	p.pen(s)
	d := p.device(center)
	p.pdf.Circle(d.X, d.Y, r*p.t.Scale, "D")
}

func (p *PDF) End() error {
	return p.pdf.Error()
}

func (p *PDF) Output(w io.Writer) error {
	return p.pdf.Output(w)
}

// WritePDF renders f onto a single page of the given size.
func WritePDF(w io.Writer, f render.Frame, width, height float64) error {
	p := NewPDF(width, height)
	if err := f.Draw(p); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return p.Output(w)
}

func SavePDF(path string, f render.Frame, width, height float64) error {
	p := NewPDF(width, height)
	if err := f.Draw(p); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return p.pdf.OutputFileAndClose(path)
}
