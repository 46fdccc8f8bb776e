package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"SharedBoard/internal/config"
	"SharedBoard/internal/export"
	"SharedBoard/internal/geom"
	"SharedBoard/internal/state"
)

func setup(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg = c
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseLevel(t *testing.T) {
	if l, err := parseLevel("debug"); err != nil || l != slog.LevelDebug {
		t.Fatalf("debug = %v %v", l, err)
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveRoom(t *testing.T) {
	setup(t)
	room, url, err := resolveRoom("board://10.0.0.5:8888/team")
	if err != nil || room != "team" || url != "ws://10.0.0.5:8888/rooms/team/ws" {
		t.Fatalf("link: %q %q %v", room, url, err)
	}

	drawURL = "http://127.0.0.1:9000"
	t.Cleanup(func() { drawURL = "" })
	room, url, err = resolveRoom("abc")
	if err != nil || room != "abc" || url != "ws://127.0.0.1:9000/rooms/abc/ws" {
		t.Fatalf("room: %q %q %v", room, url, err)
	}

	room, url, err = resolveRoom("board://10.0.0.5:8888/team%2Fa")
	if err != nil || room != "team/a" || url != "ws://10.0.0.5:8888/rooms/team%2Fa/ws" {
		t.Fatalf("escaped link: %q %q %v", room, url, err)
	}

	drawURL = ""
	room, url, err = resolveRoom("")
	if err != nil || room != "default" || url != "" {
		t.Fatalf("offline: %q %q %v", room, url, err)
	}
}

func TestShareLinkFor(t *testing.T) {
	if got := shareLinkFor("ws://10.0.0.5:8888/rooms/team/ws", "team"); got != "board://10.0.0.5:8888/team" {
		t.Fatalf("share link = %q", got)
	}
	if got := shareLinkFor("ws://10.0.0.5:8888/rooms/team%2Fa/ws", "team/a"); got != "board://10.0.0.5:8888/team%2Fa" {
		t.Fatalf("share link with slash = %q", got)
	}
	if got := shareLinkFor("", "team"); got != "" {
		t.Fatalf("offline share link = %q", got)
	}
}

func TestRenderAndExportPDF(t *testing.T) {
	setup(t)
	snap := export.Snapshot{Room: "abc", Actions: []state.Action{{
		ID: "s1", Tool: state.ToolPencil, Color: "#ff0000", StrokeWidth: 3,
		Path: []geom.Point{geom.Pt(1, 1), geom.Pt(40, 30)},
	}}}
	if err := export.SaveSnapshot("abc.json", snap); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"render", "abc.json", "--width", "64", "--height", "48"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	rootCmd.SetArgs([]string{"export", "pdf", "abc.json", "-o", "out.pdf"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	for _, name := range []string{"abc.png", "out.pdf"} {
		if fi, err := os.Stat(filepath.Join(".", name)); err != nil || fi.Size() == 0 {
			t.Fatalf("%s: %v", name, err)
		}
	}

	rootCmd.SetArgs([]string{"render", "abc.json", "--scale", "0"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for zero scale")
	}
}
