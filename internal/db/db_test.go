package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taverley.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	version, err := CurrentVersion(database.SQL())
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}

	for _, table := range []string{"switches", "work_sessions"} {
		var name string
		err := database.SQL().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taverley.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer second.Close()

	version, err := CurrentVersion(second.SQL())
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d after reopen, want %d", version, len(migrations))
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("expandPath absolute = %q", got)
	}
	if got := expandPath("~/data.db"); got == "~/data.db" {
		t.Error("expandPath did not expand ~/")
	}
}
