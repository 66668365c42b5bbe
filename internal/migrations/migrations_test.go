package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/chomp/streetartctf/internal/database"
	"github.com/chomp/streetartctf/internal/migrations"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func assertTables(t *testing.T, db *sql.DB, want []string) {
	t.Helper()
	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrations(t *testing.T) {
	db := openDB(t)

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	assertTables(t, db, []string{
		"captures", "cooldowns", "team_scores", "players",
		"accounts", "sessions", "admins", "admin_sessions",
	})
}

func TestLocalMigrations(t *testing.T) {
	db := openDB(t)

	if err := migrations.RunLocal(db); err != nil {
		t.Fatalf("running local migrations: %v", err)
	}

	assertTables(t, db, []string{"kv"})
}

func TestMigrationsIdempotent(t *testing.T) {
	db := openDB(t)

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}
