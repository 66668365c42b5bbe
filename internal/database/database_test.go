package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chomp/streetartctf/internal/database"
)

func TestOpenMemory(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t (id) VALUES ('a')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chomp.db")

	db, err := database.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestOpenOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")

	db, err := database.Open(context.Background(), path,
		database.WithBusyTimeout(750*time.Millisecond),
		database.WithPragma("PRAGMA synchronous=NORMAL"),
	)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	// Pragmas are per connection, so read them on the one that set them.
	db.SetMaxOpenConns(1)

	tests := []struct {
		pragma string
		want   int
	}{
		{pragma: "busy_timeout", want: 750},
		{pragma: "synchronous", want: 1},
	}
	for _, tt := range tests {
		var got int
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Fatalf("reading %s: %v", tt.pragma, err)
		}
		if got != tt.want {
			t.Errorf("%s = %d, want %d", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenBadPragma(t *testing.T) {
	_, err := database.Open(context.Background(), ":memory:", database.WithPragma("PRAGMA nope("))
	if err == nil {
		t.Fatal("expected error for malformed pragma")
	}
}
