package indicators

import (
	"sort"
)

// Totals is the fieldwise sum of a list of records of one kind.
type Totals struct {
	Kind    Kind             `json:"kind"`
	Records int              `json:"records"`
	Values  map[string]int64 `json:"values"`
}

// Get returns the summed value of field (zero when absent).
func (t Totals) Get(field string) int64 {
	return t.Values[field]
}

// Sum returns the combined value of several fields.
func (t Totals) Sum(fields ...string) int64 {
	var s int64
	for _, f := range fields {
		s += t.Values[f]
	}
	return s
}

// Add returns the fieldwise sum of t and o. Neither operand is modified.
func (t Totals) Add(o Totals) Totals {
	out := Totals{
		Kind:    t.Kind,
		Records: t.Records + o.Records,
		Values:  make(map[string]int64, len(t.Values)),
	}
	if out.Kind == "" {
		out.Kind = o.Kind
	}
	for f, v := range t.Values {
		out.Values[f] = v
	}
	for f, v := range o.Values {
		out.Values[f] += v
	}
	return out
}

// Aggregate sums every counter declared for kind across records. Missing
// counters count as zero and an empty list yields all-zero totals.
//
// The reduction is commutative; input order never affects the result.
// Records are assumed to share kind and to be unique per (worker, period);
// duplicates are summed. Use DuplicateKeys or Latest to guard against them.
func Aggregate(kind Kind, records []Record) Totals {
	fields := fieldsFor(kind, records)
	out := Totals{
		Kind:    kind,
		Records: len(records),
		Values:  make(map[string]int64, len(fields)),
	}
	for _, f := range fields {
		out.Values[f] = 0
	}
	for _, r := range records {
		for _, f := range fields {
			out.Values[f] += r.Counts[f]
		}
	}
	return out
}

// fieldsFor returns the declared fields for kind, or for an undeclared kind the
// sorted union of counter names present in records.
func fieldsFor(kind Kind, records []Record) []string {
	if s, ok := SchemaFor(kind); ok {
		return s.Fields
	}
	seen := make(map[string]struct{})
	for _, r := range records {
		for f := range r.Counts {
			seen[f] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// DuplicateKeys returns every (worker, kind, period) key that appears more than
// once in records, in first-seen order.
func DuplicateKeys(records []Record) []Key {
	counts := make(map[Key]int, len(records))
	var order []Key
	for _, r := range records {
		k := r.Key()
		counts[k]++
		if counts[k] == 2 {
			order = append(order, k)
		}
	}
	return order
}

// Latest collapses duplicate keys, keeping the record with the most recent
// SubmittedAt. Ties keep the later record in input order. The relative order
// of surviving records follows their first appearance.
func Latest(records []Record) []Record {
	idx := make(map[Key]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, r)
			continue
		}
		if !r.SubmittedAt.Before(out[i].SubmittedAt) {
			out[i] = r
		}
	}
	return out
}
