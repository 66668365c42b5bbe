package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed remote/*.sql
var remoteFS embed.FS

//go:embed local/*.sql
var localFS embed.FS

// Run applies all pending migrations for the shared game store against db.
func Run(db *sql.DB) error {
	return up(db, remoteFS, "remote")
}

// RunLocal applies the migrations for the per-player key-value store.
func RunLocal(db *sql.DB) error {
	return up(db, localFS, "local")
}

func up(db *sql.DB, fsys embed.FS, dir string) error {
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("running %s migrations: %w", dir, err)
	}
	return nil
}
