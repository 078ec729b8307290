// Package indicators aggregates per-worker monthly health records into totals,
// coverage percentages, shortfall gaps and performance tiers.
//
// Every function in this package is pure: inputs are never mutated and each call
// allocates fresh results, so callers may invoke them concurrently.
package indicators

import (
	"fmt"
	"strings"
)

// Kind identifies a family of records sharing one counter schema.
type Kind string

const (
	KindMaternal Kind = "maternal"
	KindChild    Kind = "child"
	KindReferral Kind = "referral"
)

// Schema declares the ordered counter fields of a record kind.
type Schema struct {
	Kind   Kind
	Fields []string
}

var schemas = []Schema{
	{
		Kind: KindMaternal,
		Fields: []string{
			"pregnant_women_registered",
			"first_trimester_registrations",
			"anc1",
			"anc2",
			"anc3",
			"anc4",
			"tt1",
			"tt2_booster",
			"ifa_distributed",
			"institutional_deliveries",
			"home_deliveries",
			"live_births",
			"still_births",
			"low_birth_weight",
			"breastfed_within_1hr",
			"maternal_deaths",
		},
	},
	{
		Kind: KindChild,
		Fields: []string{
			"children_registered",
			"newborn_visits",
			"bcg",
			"opv0",
			"hepb0",
			"penta1",
			"penta3",
			"measles1",
			"measles2",
			"fully_immunized",
			"vitamin_a",
			"diarrhoea_cases",
			"ors_given",
			"pneumonia_cases",
			"sam_identified",
			"infant_deaths",
		},
	},
	{
		Kind: KindReferral,
		Fields: []string{
			"referrals_made",
			"referrals_completed",
			"high_risk_referred",
			"sick_newborn_referred",
			"emergency_transport",
			"followups_done",
		},
	},
}

// Kinds returns the known record kinds in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(schemas))
	for i, s := range schemas {
		out[i] = s.Kind
	}
	return out
}

// SchemaFor returns a copy of the schema for kind. ok is false for unknown kinds.
func SchemaFor(kind Kind) (Schema, bool) {
	for _, s := range schemas {
		if s.Kind == kind {
			return Schema{Kind: s.Kind, Fields: append([]string(nil), s.Fields...)}, true
		}
	}
	return Schema{Kind: kind}, false
}

// ParseKind converts a user supplied string into a known Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := SchemaFor(k); !ok {
		return "", fmt.Errorf("unknown record kind %q (valid: %s)", s, validKindsString())
	}
	return k, nil
}

// HasField reports whether field is declared for the schema.
func (s Schema) HasField(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func validKindsString() string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = string(s.Kind)
	}
	return strings.Join(names, ", ")
}
