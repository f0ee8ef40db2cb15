package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLogging(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Setenv("LOG_FILE", "")
		setupLogging()()
	})

	t.Run("writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api.log")
		t.Setenv("LOG_FILE", path)

		closeLog := setupLogging()
		log.Printf("[test] hello")
		closeLog()

		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !strings.Contains(string(b), "[test] hello") {
			t.Fatalf("expected log line in file, got %q", b)
		}
	})
}

func TestEnvInt(t *testing.T) {
	t.Setenv("LOG_MAX_BACKUPS", "5")
	if got := envInt("LOG_MAX_BACKUPS", 3); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	t.Setenv("LOG_MAX_BACKUPS", "-1")
	if got := envInt("LOG_MAX_BACKUPS", 3); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
