package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Running.Port != 8888 || cfg.Canvas.Width != 1280 || cfg.Log.Level != "info" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Redis.PresenceTTL != 2*time.Minute {
		t.Fatalf("presence ttl = %v", cfg.Redis.PresenceTTL)
	}
}

func TestFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	body := `
running:
  port: 9000
kafka:
  brokers: ["k1:9092", "k2:9092"]
redis:
  presence_ttl: 30s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOARD_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Running.Port != 9000 {
		t.Fatalf("port = %d", cfg.Running.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.PresenceTTL != 30*time.Second {
		t.Fatalf("presence ttl = %v", cfg.Redis.PresenceTTL)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestInvalidPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOARD_RUNNING_PORT", "70000")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for out of range port")
	}
}
