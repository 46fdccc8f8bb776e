package export

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
)

func sample() []state.Action {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []state.Action{
		{ID: "p", Tool: state.ToolPencil, Color: "#ff0000", StrokeWidth: 3, Timestamp: at,
			Path: []geom.Point{geom.Pt(10, 10), geom.Pt(40, 30), geom.Pt(60, 10)}},
		{ID: "r", Tool: state.ToolRectangle, Color: "#0000ff", StrokeWidth: 2, Timestamp: at,
			Path: []geom.Point{geom.Pt(80, 80), geom.Pt(20, 50)}},
		{ID: "c", Tool: state.ToolEllipse, Color: "#00ff00", StrokeWidth: 2, Timestamp: at,
			Path: []geom.Point{geom.Pt(50, 50), geom.Pt(70, 50)}},
		{ID: "e", Tool: state.ToolEraser, StrokeWidth: 8, Timestamp: at,
			Path: []geom.Point{geom.Pt(10, 10), geom.Pt(20, 20)}},
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	f := render.Frame{Actions: sample(), Transform: geom.Transform{Scale: 1.5, Offset: geom.Pt(5, 5)}}
	if err := WritePDF(&buf, f, 200, 120); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWritePDFBadTransform(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, render.Frame{Actions: sample()}, 200, 120)
	if err == nil {
		t.Fatal("zero-scale frame exported")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	f := render.Frame{Actions: sample(), Transform: geom.Identity()}
	if err := WritePNG(&buf, f, 100, 80, 2); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 160 {
		t.Fatalf("bounds = %v, want 200x160 at dpr 2", b)
	}
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.json")
	in := Snapshot{Room: "abc", Actions: sample()}
	if err := SaveSnapshot(path, in); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	out, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if out.Room != "abc" || len(out.Actions) != len(in.Actions) {
		t.Fatalf("loaded %+v", out)
	}
	for i := range in.Actions {
		if out.Actions[i].ID != in.Actions[i].ID || !out.Actions[i].Timestamp.Equal(in.Actions[i].Timestamp) {
			t.Fatalf("action %d = %+v", i, out.Actions[i])
		}
	}
}

func TestReadSnapshotSkipsInvalid(t *testing.T) {
	doc := `{"room":"abc","actions":[
		{"id":"ok","tool":"pencil","color":"#000000","strokeWidth":1,"path":[{"x":0,"y":0},{"x":1,"y":1}]},
		{"id":"bad","tool":"laser","color":"#000000","strokeWidth":1,"path":[{"x":0,"y":0}]}
	]}`
	s, err := ReadSnapshot(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(s.Actions) != 1 || s.Actions[0].ID != "ok" {
		t.Fatalf("actions = %+v", s.Actions)
	}
}
