package db

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/asha.report/internal/httputil"
)

// AttachAdminRoutes mounts the tailsql console and a backup download under
// /debug/ on mux.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+filepath.Base(db.path), db.DB, &tailsql.DBOptions{
		Label: "ASHA indicators DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(db.handleBackup))
	debug.Handle("db-stats", "Row counts per table", http.HandlerFunc(db.handleStats))
	return nil
}

// TableStats holds the row count of one table.
type TableStats struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// DatabaseStats returns row counts for the indicator tables.
func (db *DB) DatabaseStats(ctx context.Context) ([]TableStats, error) {
	tables := []string{"workers", "indicator_records", "targets"}
	stats := make([]TableStats, 0, len(tables))
	for _, name := range tables {
		var n int64
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		stats = append(stats, TableStats{Name: name, Rows: n})
	}
	return stats, nil
}

func (db *DB) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := db.DatabaseStats(r.Context())
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, stats)
}

func (db *DB) handleBackup(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "asha-backup-")
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup directory: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Failed to remove backup directory: %v", err)
		}
	}()

	name := fmt.Sprintf("backup-%d.db", db.clock.Now().Unix())
	backupPath := filepath.Join(dir, name)
	if _, err := db.ExecContext(r.Context(), "VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}

	backupFile, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}
	defer backupFile.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.gz", name))
	w.Header().Set("Content-Type", "application/gzip")

	gz := gzip.NewWriter(w)
	defer gz.Close()
	if _, err := io.Copy(gz, backupFile); err != nil {
		log.Printf("Failed to stream backup: %v", err)
	}
}
