package geom

import (
	"math"
	"math/rand"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		tr := Transform{
			Scale:  0.05 + r.Float64()*10,
			Offset: Pt(r.Float64()*2000-1000, r.Float64()*2000-1000),
		}
		p := Pt(r.Float64()*4000-2000, r.Float64()*4000-2000)
		got := ToDeviceSpace(ToCanvasSpace(p, tr), tr)
		if !got.Near(p, 1e-9*math.Max(1, math.Abs(p.X)+math.Abs(p.Y))) {
			t.Fatalf("round trip %v under %+v = %v", p, tr, got)
		}
	}
}

func TestToCanvasSpace(t *testing.T) {
	tr := Transform{Scale: 2, Offset: Pt(10, -5)}
	got := ToCanvasSpace(Pt(40, 40), tr)
	if !got.Equal(Pt(10, 25)) {
		t.Fatalf("ToCanvasSpace = %v, want (10,25)", got)
	}
}

func TestPanKeepsPointUnderCursor(t *testing.T) {
	tr := Transform{Scale: 1.5, Offset: Pt(3, 4)}
	from, to := Pt(100, 100), Pt(130, 70)
	anchor := ToCanvasSpace(from, tr)

	tr = tr.Pan(from, to)
	if got := ToCanvasSpace(to, tr); !got.Near(anchor, 1e-9) {
		t.Fatalf("canvas point under cursor moved: %v -> %v", anchor, got)
	}
	if tr.Scale != 1.5 {
		t.Fatalf("pan changed scale to %v", tr.Scale)
	}
}

func TestZoomTwice(t *testing.T) {
	tr := Identity().ZoomIn().ZoomIn()
	if math.Abs(tr.Scale-1.21) > 1e-12 {
		t.Fatalf("scale = %v, want 1.21", tr.Scale)
	}
	if w := tr.WidthOnScreen(5); math.Abs(w*tr.Scale-5) > 1e-12 {
		t.Fatalf("on-screen width = %v, want 5", w*tr.Scale)
	}
}

func TestZoomClamp(t *testing.T) {
	tr := Identity()
	for i := 0; i < 500; i++ {
		tr = tr.ZoomOut()
	}
	if tr.Scale != MinScale {
		t.Fatalf("scale = %v, want %v", tr.Scale, MinScale)
	}
	if got := tr.Zoom(-1); got != tr {
		t.Fatalf("negative factor changed transform: %+v", got)
	}
}
