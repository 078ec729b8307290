package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/banshee-data/asha.report/internal/timeutil"
)

var (
	// ErrNotFound is returned when a worker, record or target set does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRecord is returned by InsertRecord when a record for the same
	// worker, kind and period is already stored.
	ErrDuplicateRecord = errors.New("duplicate record")
	// ErrDuplicateWorker is returned by CreateWorker when the id is taken.
	ErrDuplicateWorker = errors.New("duplicate worker")
)

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"foreign_keys(1)",
}

type DB struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

// NewDB opens the database at path and applies all pending schema migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.MigrateUp(migrationsFS); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenDB opens the database without touching the schema. The migrate
// subcommand uses it so that migrations stay under operator control.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &DB{DB: sqlDB, path: path, clock: timeutil.RealClock{}}, nil
}

// SetClock replaces the clock used to stamp created_at and submitted_at.
func (db *DB) SetClock(c timeutil.Clock) {
	db.clock = c
}

// Path returns the filesystem path the database was opened with.
func (db *DB) Path() string {
	return db.path
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

func isConstraint(err error, code int, text string) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == code {
		return true
	}
	return strings.Contains(err.Error(), text)
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed") ||
		isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}
