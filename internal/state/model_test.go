package state

import (
	"errors"
	"testing"
	"time"

	"SharedBoard/internal/geom"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Action)
		ok     bool
	}{
		{"valid", func(*Action) {}, true},
		{"empty id", func(a *Action) { a.ID = "" }, false},
		{"pan tool", func(a *Action) { a.Tool = ToolPan }, false},
		{"empty path", func(a *Action) { a.Path = nil }, false},
		{"zero width", func(a *Action) { a.StrokeWidth = 0 }, false},
		{"bad color", func(a *Action) { a.Color = "red" }, false},
		{"eraser ignores color", func(a *Action) { a.Tool = ToolEraser; a.Color = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := makeAction("1", "me")
			tt.mutate(&a)
			err := a.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidAction) {
				t.Fatalf("Validate() = %v, want ErrInvalidAction", err)
			}
		})
	}
}

func TestEraserColor(t *testing.T) {
	a := makeAction("1", "me")
	a.Tool = ToolEraser
	a.Color = "#ff0000"
	if a.StrokeColor() != Background {
		t.Fatalf("eraser colour = %s, want %s", a.StrokeColor(), Background)
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory("me")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.Now = func() time.Time { return now }
	path := []geom.Point{geom.Pt(0, 0), geom.Pt(1, 1)}

	a := f.New(ToolRectangle, "#123456", 3, path)
	b := f.New(ToolRectangle, "#123456", 3, path)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids %q and %q are not unique", a.ID, b.ID)
	}
	if a.Author != "me" || !a.Timestamp.Equal(now) {
		t.Fatalf("unexpected stamp: %+v", a)
	}
	path[0] = geom.Pt(5, 5)
	if !a.First().Equal(geom.Pt(0, 0)) {
		t.Fatal("factory kept a reference to the capture buffer")
	}
}
