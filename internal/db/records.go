package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/asha.report/internal/indicators"
)

const recordColumns = `r.record_id, r.worker_id, r.kind, r.month, r.year, r.counts, r.submitted_at`

// InsertRecord stores a new record. A record already stored for the same
// worker, kind and period yields ErrDuplicateRecord; use UpsertRecord to
// replace it.
func (db *DB) InsertRecord(ctx context.Context, r *indicators.Record) error {
	counts, err := db.prepareRecord(r)
	if err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO indicator_records (record_id, worker_id, kind, month, year, counts, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.WorkerID, string(r.Kind), int(r.Period.Month), r.Period.Year, counts, r.SubmittedAt.UnixNano())
	if err != nil {
		return classifyWriteError(r, err)
	}
	return nil
}

// UpsertRecord stores r, overwriting the counters of any record already held
// for the same worker, kind and period. r.ID is set to the stored record's id.
func (db *DB) UpsertRecord(ctx context.Context, r *indicators.Record) error {
	counts, err := db.prepareRecord(r)
	if err != nil {
		return err
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	var stored string
	err = db.QueryRowContext(ctx, `
		INSERT INTO indicator_records (record_id, worker_id, kind, month, year, counts, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (worker_id, kind, month, year) DO UPDATE SET
			counts = excluded.counts,
			submitted_at = excluded.submitted_at
		RETURNING record_id
	`, id, r.WorkerID, string(r.Kind), int(r.Period.Month), r.Period.Year, counts, r.SubmittedAt.UnixNano()).Scan(&stored)
	if err != nil {
		return classifyWriteError(r, err)
	}
	r.ID = stored
	return nil
}

// GetRecord retrieves a record by id.
func (db *DB) GetRecord(ctx context.Context, id string) (*indicators.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM indicator_records r WHERE r.record_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// DeleteRecord removes a record by id.
func (db *DB) DeleteRecord(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM indicator_records WHERE record_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	return nil
}

// FetchRecords returns the records of kind for period, narrowed by scope.
// Results are ordered by worker id then submission time.
func (db *DB) FetchRecords(ctx context.Context, kind indicators.Kind, scope indicators.Scope, period indicators.Period) ([]indicators.Record, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + recordColumns + ` FROM indicator_records r`)
	args := []interface{}{string(kind), int(period.Month), period.Year}
	where := []string{"r.kind = ?", "r.month = ?", "r.year = ?"}

	if scope.Region != "" {
		b.WriteString(` JOIN workers w ON w.worker_id = r.worker_id`)
		where = append(where, "w.region = ?")
		args = append(args, scope.Region)
	}
	if len(scope.WorkerIDs) > 0 {
		where = append(where, "r.worker_id IN ("+placeholders(len(scope.WorkerIDs))+")")
		for _, id := range scope.WorkerIDs {
			args = append(args, id)
		}
	}
	b.WriteString(" WHERE " + strings.Join(where, " AND "))
	b.WriteString(" ORDER BY r.worker_id, r.submitted_at")

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer rows.Close()

	records := []indicators.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// prepareRecord validates r, stamps SubmittedAt and returns the JSON counters.
func (db *DB) prepareRecord(r *indicators.Record) (string, error) {
	if err := indicators.Validate(*r); err != nil {
		return "", err
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = db.clock.Now().UTC()
	}
	counts := r.Counts
	if counts == nil {
		counts = map[string]int64{}
	}
	buf, err := json.Marshal(counts)
	if err != nil {
		return "", fmt.Errorf("failed to encode counts: %w", err)
	}
	return string(buf), nil
}

func classifyWriteError(r *indicators.Record, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("record for worker %q %s %s: %w", r.WorkerID, r.Kind, r.Period, ErrDuplicateRecord)
	case isForeignKeyViolation(err):
		return fmt.Errorf("worker %q: %w", r.WorkerID, ErrNotFound)
	default:
		return fmt.Errorf("failed to store record: %w", err)
	}
}

func scanRecord(s rowScanner) (*indicators.Record, error) {
	var rec indicators.Record
	var kind, counts string
	var month int
	var submitted int64
	if err := s.Scan(&rec.ID, &rec.WorkerID, &kind, &month, &rec.Period.Year, &counts, &submitted); err != nil {
		return nil, err
	}
	rec.Kind = indicators.Kind(kind)
	rec.Period.Month = time.Month(month)
	rec.SubmittedAt = time.Unix(0, submitted).UTC()
	if err := json.Unmarshal([]byte(counts), &rec.Counts); err != nil {
		return nil, fmt.Errorf("record %s has malformed counts: %w", rec.ID, err)
	}
	return &rec, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
