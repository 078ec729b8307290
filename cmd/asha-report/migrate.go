package main

import (
	"io"

	"github.com/banshee-data/asha.report/internal/db"
)

func handleMigrate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("migrate", stderr)
	dbPath := fs.String("db", "asha.db", "Path to the SQLite database file")
	fs.Usage = func() { db.PrintMigrateHelp(stderr) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	return db.RunMigrateCommand(fs.Args(), *dbPath, stdout)
}
