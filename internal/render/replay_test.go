package render

import (
	"errors"
	"image"
	"testing"
	"time"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/state"
)

func action(id string, tool state.Tool, width float64, pts ...geom.Point) state.Action {
	return state.Action{
		ID:          id,
		Tool:        tool,
		Color:       "#112233",
		StrokeWidth: width,
		Path:        pts,
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReplayPerTool(t *testing.T) {
	actions := []state.Action{
		action("p", state.ToolPencil, 4, geom.Pt(0, 0), geom.Pt(5, 5), geom.Pt(10, 0)),
		action("e", state.ToolEraser, 8, geom.Pt(1, 1), geom.Pt(2, 2)),
		action("r", state.ToolRectangle, 2, geom.Pt(10, 10), geom.Pt(12, 12), geom.Pt(30, 20)),
		action("c", state.ToolEllipse, 2, geom.Pt(0, 0), geom.Pt(7, 7), geom.Pt(3, 4)),
	}
	rec := &Recorder{}
	tr := geom.Transform{Scale: 2}
	if err := Replay(rec, actions, tr, nil); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(rec.Calls) != 4 {
		t.Fatalf("got %d calls:\n%s", len(rec.Calls), rec)
	}

	if c := rec.Calls[0]; c.Op != "polyline" || len(c.Points) != 3 || c.Style.Width != 2 {
		t.Errorf("pencil: %s", c)
	}
	if c := rec.Calls[1]; c.Op != "polyline" || c.Style.Color != state.Background {
		t.Errorf("eraser: %s", c)
	}
	if c := rec.Calls[2]; c.Op != "rect" || c.W != 20 || c.H != 10 || !c.Points[0].Equal(geom.Pt(10, 10)) {
		t.Errorf("rectangle: %s", c)
	}
	if c := rec.Calls[3]; c.Op != "circle" || c.R != 5 || !c.Points[0].Equal(geom.Pt(0, 0)) {
		t.Errorf("ellipse: %s", c)
	}
	if rec.Background != state.Background {
		t.Errorf("background = %q", rec.Background)
	}
}

func TestReplayDegenerate(t *testing.T) {
	tests := []struct {
		name string
		a    state.Action
	}{
		{"single point stroke", action("1", state.ToolPencil, 1, geom.Pt(3, 3))},
		{"repeated point stroke", action("2", state.ToolPencil, 1, geom.Pt(3, 3), geom.Pt(3, 3))},
		{"flat rectangle", action("3", state.ToolRectangle, 1, geom.Pt(0, 0), geom.Pt(10, 0))},
		{"zero radius", action("4", state.ToolEllipse, 1, geom.Pt(4, 4), geom.Pt(4, 4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			if err := Replay(rec, []state.Action{tt.a}, geom.Identity(), nil); err != nil {
				t.Fatalf("Replay: %v", err)
			}
			if len(rec.Calls) != 0 {
				t.Fatalf("expected nothing drawn, got:\n%s", rec)
			}
		})
	}
}

func TestReplayOverlayLast(t *testing.T) {
	committed := action("1", state.ToolPencil, 1, geom.Pt(0, 0), geom.Pt(1, 1))
	overlay := action("", state.ToolRectangle, 1, geom.Pt(0, 0), geom.Pt(4, 4))
	rec := &Recorder{}
	if err := (Frame{Actions: []state.Action{committed}, Transform: geom.Identity(), Overlay: &overlay}).Draw(rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(rec.Calls) != 2 || rec.Calls[1].Op != "rect" {
		t.Fatalf("overlay not drawn last:\n%s", rec)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	actions := []state.Action{
		action("a", state.ToolPencil, 3, geom.Pt(0, 0), geom.Pt(10, 10)),
		action("b", state.ToolEllipse, 3, geom.Pt(5, 5), geom.Pt(9, 8)),
	}
	tr := geom.Transform{Scale: 1.21, Offset: geom.Pt(-4, 7)}
	first, second := &Recorder{}, &Recorder{}
	Replay(first, actions, tr, nil)
	Replay(second, append([]state.Action(nil), actions...), tr, nil)
	if first.String() != second.String() {
		t.Fatalf("replays differ:\n%s\n--\n%s", first, second)
	}

	// redrawing the same surface starts from a clean frame
	Replay(first, actions, tr, nil)
	if len(first.Calls) != 2 || first.Frames != 2 {
		t.Fatalf("calls=%d frames=%d", len(first.Calls), first.Frames)
	}
}

func TestReplayRejectsBadTransform(t *testing.T) {
	err := Replay(&Recorder{}, nil, geom.Transform{Scale: 0}, nil)
	if !errors.Is(err, ErrBadTransform) {
		t.Fatalf("err = %v, want ErrBadTransform", err)
	}
}

func TestNormalizeRect(t *testing.T) {
	o, w, h := NormalizeRect(geom.Pt(10, 10), -4, -6)
	if !o.Equal(geom.Pt(6, 4)) || w != 4 || h != 6 {
		t.Fatalf("got %v %v %v", o, w, h)
	}
}

func TestParseColor(t *testing.T) {
	c := ParseColor("#ff8000")
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Fatalf("ParseColor = %+v", c)
	}
}

func dark(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r>>8 < 128 && g>>8 < 128 && b>>8 < 128
}

func TestRasterStroke(t *testing.T) {
	a := action("1", state.ToolPencil, 8, geom.Pt(10, 25), geom.Pt(40, 25))
	a.Color = "#000000"
	r := NewRaster(100, 100, 1)
	// scale 2: the stroke lands on device row 50, 4px wide
	if err := Replay(r, []state.Action{a}, geom.Transform{Scale: 2}, nil); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	img := r.Image()
	if !dark(img, 50, 50) {
		t.Errorf("expected ink at (50,50)")
	}
	if dark(img, 50, 10) || dark(img, 95, 50) {
		t.Errorf("unexpected ink away from the stroke")
	}
}
