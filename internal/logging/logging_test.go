package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: "info", Path: dir, Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	logger.Info("hello from test")

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(files))
	}

	name := files[0].Name()
	if !strings.HasPrefix(name, "taverley-") || !strings.HasSuffix(name, ".log") {
		t.Errorf("unexpected log file name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	if err == nil {
		t.Error("New() with invalid level should error")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: "warn", Path: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	logger.Info("should be dropped")
	logger.Warn("should appear")

	data, err := os.ReadFile(logger.currentLogPath())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "should be dropped") {
		t.Error("info message logged despite warn level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("warn message missing")
	}
}

func TestWithComponent(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: "debug", Path: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	logger.WithComponent("rotation").Info("tagged")

	data, err := os.ReadFile(logger.currentLogPath())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"component":"rotation"`) {
		t.Errorf("component field missing, got %q", string(data))
	}
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "taverley-2020-01-01.log")
	if err := os.WriteFile(old, []byte("stale"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	// A non-log file must survive cleanup.
	keep := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(keep, []byte("keep"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	logger := &Logger{logDir: dir}
	logger.cleanOldLogs(7)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale log file should have been removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("non-log file should not be touched")
	}
}

func TestGetUninitializedReturnsUsableLogger(t *testing.T) {
	logger := Get()
	if logger == nil {
		t.Fatal("Get() returned nil")
	}
	// Must not panic.
	logger.Debug("noop")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.RetentionDays != 7 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !strings.Contains(cfg.Path, filepath.Join("taverley", "logs")) {
		t.Errorf("unexpected default path %q", cfg.Path)
	}
}
