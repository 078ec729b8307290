package db

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DevMode reads migrations from DevMigrationsDir on disk instead of the
// copy embedded in the binary, so SQL edits are picked up without a rebuild.
var DevMode = false

// DevMigrationsDir is the on-disk migrations directory used in DevMode.
var DevMigrationsDir = "internal/db/migrations"

func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		if _, err := os.Stat(DevMigrationsDir); err != nil {
			return nil, fmt.Errorf("dev migrations directory: %w", err)
		}
		return os.DirFS(DevMigrationsDir), nil
	}
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}

// MigrationsFS returns the migrations filesystem NewDB applies.
func MigrationsFS() (fs.FS, error) {
	return getMigrationsFS()
}
