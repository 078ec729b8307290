package indicators

import (
	"errors"
	"fmt"
	"strings"
)

// Write-path validation errors. The aggregation functions never return these;
// they are for callers accepting records from data entry.
var (
	ErrUnknownKind     = errors.New("unknown record kind")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrMissingWorker   = errors.New("worker id is required")
	ErrNegativeCounter = errors.New("negative counter")
	ErrUnknownField    = errors.New("unknown counter field")
)

// Validate checks a record before it is stored. Negative counters are rejected
// rather than clamped so a bad submission is visible to the worker who made it.
func Validate(r Record) error {
	if strings.TrimSpace(r.WorkerID) == "" {
		return ErrMissingWorker
	}
	schema, ok := SchemaFor(r.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	if !r.Period.Valid() {
		return fmt.Errorf("%w: month=%d year=%d", ErrInvalidPeriod, int(r.Period.Month), r.Period.Year)
	}
	for f := range r.Counts {
		if !schema.HasField(f) {
			return fmt.Errorf("%w: %q is not a %s counter", ErrUnknownField, f, r.Kind)
		}
	}
	if neg := r.NegativeFields(); len(neg) > 0 {
		return fmt.Errorf("%w: %s", ErrNegativeCounter, strings.Join(neg, ", "))
	}
	return nil
}

// ValidateTargets applies the same rules to a target set.
func ValidateTargets(t TargetSet) error {
	schema, ok := SchemaFor(t.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	if !t.Period.Valid() {
		return fmt.Errorf("%w: month=%d year=%d", ErrInvalidPeriod, int(t.Period.Month), t.Period.Year)
	}
	for f, v := range t.Expected {
		if !schema.HasField(f) {
			return fmt.Errorf("%w: %q is not a %s counter", ErrUnknownField, f, t.Kind)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeCounter, f)
		}
	}
	return nil
}
