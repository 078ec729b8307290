package indicators

import (
	"fmt"
	"time"
)

// Period is a calendar month.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected YYYY-MM: %w", s, err)
	}
	return Period{Month: t.Month(), Year: t.Year()}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// Valid reports whether the month is in range and the year is positive.
func (p Period) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December && p.Year > 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Scope narrows a data-source query to a region and optionally to specific workers.
// An empty Scope matches every worker.
type Scope struct {
	Region    string   `json:"region,omitempty"`
	WorkerIDs []string `json:"worker_ids,omitempty"`
}

// Record is one worker's reported counters for one period.
// Counters absent from Counts read as zero.
type Record struct {
	ID          string           `json:"id,omitempty"`
	WorkerID    string           `json:"worker_id"`
	Kind        Kind             `json:"kind"`
	Period      Period           `json:"period"`
	Counts      map[string]int64 `json:"counts"`
	SubmittedAt time.Time        `json:"submitted_at,omitempty"`
}

// Key identifies the (worker, kind, period) a record belongs to.
type Key struct {
	WorkerID string `json:"worker_id"`
	Kind     Kind   `json:"kind"`
	Period   Period `json:"period"`
}

// Key returns the uniqueness key of the record.
func (r Record) Key() Key {
	return Key{WorkerID: r.WorkerID, Kind: r.Kind, Period: r.Period}
}

// Count returns the named counter, treating a missing value as zero.
func (r Record) Count(field string) int64 {
	return r.Counts[field]
}

// NegativeFields returns the counters holding a negative value, in schema
// order (name order for undeclared kinds).
func (r Record) NegativeFields() []string {
	var out []string
	for _, f := range fieldsFor(r.Kind, []Record{r}) {
		if r.Counts[f] < 0 {
			out = append(out, f)
		}
	}
	return out
}

// TargetSet holds the expected counts for a region, kind and period.
type TargetSet struct {
	Region   string           `json:"region"`
	Kind     Kind             `json:"kind"`
	Period   Period           `json:"period"`
	Expected map[string]int64 `json:"expected"`
}

// Lookup returns the expected value for field. A nil TargetSet or a missing
// field yields (0, false).
func (t *TargetSet) Lookup(field string) (int64, bool) {
	if t == nil || t.Expected == nil {
		return 0, false
	}
	v, ok := t.Expected[field]
	return v, ok
}
