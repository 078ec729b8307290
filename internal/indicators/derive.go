package indicators

import "math"

// Expectation describes how the denominator of an indicator is resolved.
//
// When TargetField is set and the TargetSet carries it, that value is used.
// Otherwise, when BaseFields is set, the expectation is
// round(Fraction × Σ totals[BaseFields]) with Fraction defaulting to 1.
// With neither available the expectation is 0.
type Expectation struct {
	TargetField string   `json:"target_field,omitempty"`
	BaseFields  []string `json:"base_fields,omitempty"`
	Fraction    float64  `json:"fraction,omitempty"`
}

// Resolve computes the expected value for totals and targets.
func (e Expectation) Resolve(totals Totals, targets *TargetSet) int64 {
	if e.TargetField != "" {
		if v, ok := targets.Lookup(e.TargetField); ok {
			return v
		}
	}
	if len(e.BaseFields) == 0 {
		return 0
	}
	frac := e.Fraction
	if frac == 0 {
		frac = 1
	}
	v := math.Floor(float64(totals.Sum(e.BaseFields...))*frac + 0.5)
	if math.IsInf(v, 0) {
		return 0
	}
	return toInt64(v)
}

// Definition names one derived indicator.
type Definition struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	Actual     []string    `json:"actual"`
	Expected   Expectation `json:"expected"`
	Thresholds Thresholds  `json:"thresholds"`
	Labels     TierLabels  `json:"labels"`
}

// DerivedIndicator is the scored result of one Definition.
type DerivedIndicator struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Actual     int64  `json:"actual"`
	Expected   int64  `json:"expected"`
	Percentage int    `json:"percentage"`
	Gap        int64  `json:"gap"`
	Level      Level  `json:"level"`
	Tier       string `json:"tier"`
}

// Evaluate scores a single definition.
func Evaluate(def Definition, totals Totals, targets *TargetSet) DerivedIndicator {
	actual := totals.Sum(def.Actual...)
	expected := def.Expected.Resolve(totals, targets)
	pct := Percentage(float64(actual), float64(expected))
	level := Classify(pct, def.Thresholds)
	return DerivedIndicator{
		Key:        def.Key,
		Label:      def.Label,
		Actual:     actual,
		Expected:   expected,
		Percentage: pct,
		Gap:        toInt64(Gap(float64(expected), float64(actual))),
		Level:      level,
		Tier:       def.Labels.Label(level),
	}
}

// Build scores every definition in order. The result always has exactly one
// entry per definition; a zero expectation scores 0% in the lowest band.
// A nil targets is treated as an empty target set.
func Build(defs []Definition, totals Totals, targets *TargetSet) []DerivedIndicator {
	out := make([]DerivedIndicator, len(defs))
	for i, d := range defs {
		out[i] = Evaluate(d, totals, targets)
	}
	return out
}
