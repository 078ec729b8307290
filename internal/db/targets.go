package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/banshee-data/asha.report/internal/indicators"
)

// SetTargets replaces the expected counts stored for the target set's
// region, kind and period.
func (db *DB) SetTargets(ctx context.Context, t indicators.TargetSet) error {
	if err := indicators.ValidateTargets(t); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	month, year := int(t.Period.Month), t.Period.Year
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM targets WHERE region = ? AND kind = ? AND month = ? AND year = ?
	`, t.Region, string(t.Kind), month, year); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}

	fields := make([]string, 0, len(t.Expected))
	for f := range t.Expected {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO targets (region, kind, month, year, field, expected)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare target insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fields {
		if _, err := stmt.ExecContext(ctx, t.Region, string(t.Kind), month, year, f, t.Expected[f]); err != nil {
			return fmt.Errorf("failed to insert target %s: %w", f, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit targets: %w", err)
	}
	return nil
}

// FetchTargets returns the target set for region, kind and period, or nil
// when none has been set.
func (db *DB) FetchTargets(ctx context.Context, region string, kind indicators.Kind, period indicators.Period) (*indicators.TargetSet, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT field, expected FROM targets
		WHERE region = ? AND kind = ? AND month = ? AND year = ?
	`, region, string(kind), int(period.Month), period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch targets: %w", err)
	}
	defer rows.Close()

	expected := map[string]int64{}
	for rows.Next() {
		var field string
		var v int64
		if err := rows.Scan(&field, &v); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		expected[field] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expected) == 0 {
		return nil, nil
	}

	return &indicators.TargetSet{Region: region, Kind: kind, Period: period, Expected: expected}, nil
}
