package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Worker is an ASHA worker registered under a facilitator's region.
type Worker struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWorker inserts w, generating an id when w.ID is empty.
func (db *DB) CreateWorker(ctx context.Context, w *Worker) error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("worker name is required")
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.CreatedAt = db.clock.Now().UTC().Truncate(time.Second)

	_, err := db.ExecContext(ctx, `
		INSERT INTO workers (worker_id, name, region, phone, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, w.ID, w.Name, w.Region, w.Phone, boolToInt(w.Active), w.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return fmt.Errorf("worker %q: %w", w.ID, ErrDuplicateWorker)
	}
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	return nil
}

// GetWorker retrieves a worker by id.
func (db *DB) GetWorker(ctx context.Context, id string) (*Worker, error) {
	row := db.QueryRowContext(ctx, `
		SELECT worker_id, name, region, phone, active, created_at
		FROM workers
		WHERE worker_id = ?
	`, id)

	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("worker %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// ListWorkers returns workers ordered by name. An empty region lists all.
func (db *DB) ListWorkers(ctx context.Context, region string) ([]Worker, error) {
	query := `SELECT worker_id, name, region, phone, active, created_at FROM workers`
	var args []interface{}
	if region != "" {
		query += ` WHERE region = ?`
		args = append(args, region)
	}
	query += ` ORDER BY name, worker_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	workers := []Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, *w)
	}
	return workers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorker(s rowScanner) (*Worker, error) {
	var w Worker
	var active int
	var createdAt int64
	if err := s.Scan(&w.ID, &w.Name, &w.Region, &w.Phone, &active, &createdAt); err != nil {
		return nil, err
	}
	w.Active = active == 1
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
