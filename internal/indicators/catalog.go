package indicators

var catalog = map[Kind][]Definition{
	KindMaternal: {
		{
			Key:        "registration_coverage",
			Label:      "Pregnancy Registration Coverage",
			Actual:     []string{"pregnant_women_registered"},
			Expected:   Expectation{TargetField: "pregnant_women_registered"},
			Thresholds: Thresholds{Good: 90, Warning: 70},
			Labels:     ExcellentScale,
		},
		{
			Key:        "first_trimester_registration",
			Label:      "1st Trimester Registration Rate",
			Actual:     []string{"first_trimester_registrations"},
			Expected:   Expectation{TargetField: "first_trimester_registrations", BaseFields: []string{"pregnant_women_registered"}},
			Thresholds: Thresholds{Good: 80, Warning: 60},
			Labels:     ExcellentScale,
		},
		{
			Key:        "anc3_coverage",
			Label:      "ANC3 Coverage",
			Actual:     []string{"anc3"},
			Expected:   Expectation{TargetField: "anc3", BaseFields: []string{"pregnant_women_registered"}},
			Thresholds: Thresholds{Good: 85, Warning: 60},
			Labels:     ExcellentScale,
		},
		{
			Key:        "tt2_coverage",
			Label:      "TT2/Booster Coverage",
			Actual:     []string{"tt2_booster"},
			Expected:   Expectation{TargetField: "tt2_booster", BaseFields: []string{"pregnant_women_registered"}},
			Thresholds: Thresholds{Good: 85, Warning: 70},
			Labels:     ExcellentScale,
		},
		{
			Key:        "institutional_delivery",
			Label:      "Institutional Delivery Rate",
			Actual:     []string{"institutional_deliveries"},
			Expected:   Expectation{TargetField: "institutional_deliveries", BaseFields: []string{"institutional_deliveries", "home_deliveries"}},
			Thresholds: Thresholds{Good: 90, Warning: 70},
			Labels:     ExcellentScale,
		},
		{
			Key:        "timely_breastfeeding",
			Label:      "Timely Breastfeeding Rate",
			Actual:     []string{"breastfed_within_1hr"},
			Expected:   Expectation{TargetField: "breastfed_within_1hr", BaseFields: []string{"live_births"}, Fraction: 0.8},
			Thresholds: Thresholds{Good: 80, Warning: 60},
			Labels:     GoodScale,
		},
	},
	KindChild: {
		{
			Key:        "full_immunization",
			Label:      "Full Immunization Coverage",
			Actual:     []string{"fully_immunized"},
			Expected:   Expectation{TargetField: "fully_immunized", BaseFields: []string{"children_registered"}},
			Thresholds: Thresholds{Good: 90, Warning: 70},
			Labels:     ExcellentScale,
		},
		{
			Key:        "bcg_coverage",
			Label:      "BCG Coverage",
			Actual:     []string{"bcg"},
			Expected:   Expectation{TargetField: "bcg", BaseFields: []string{"children_registered"}},
			Thresholds: Thresholds{Good: 85, Warning: 70},
			Labels:     ExcellentScale,
		},
		{
			Key:        "measles1_coverage",
			Label:      "Measles 1st Dose Coverage",
			Actual:     []string{"measles1"},
			Expected:   Expectation{TargetField: "measles1", BaseFields: []string{"children_registered"}},
			Thresholds: Thresholds{Good: 85, Warning: 70},
			Labels:     ExcellentScale,
		},
		{
			Key:        "newborn_visits",
			Label:      "Home-Based Newborn Care Visits",
			Actual:     []string{"newborn_visits"},
			Expected:   Expectation{TargetField: "newborn_visits"},
			Thresholds: Thresholds{Good: 80, Warning: 60},
			Labels:     GoodScale,
		},
		{
			Key:        "ors_treatment",
			Label:      "Diarrhoea Cases Given ORS",
			Actual:     []string{"ors_given"},
			Expected:   Expectation{BaseFields: []string{"diarrhoea_cases"}},
			Thresholds: Thresholds{Good: 90, Warning: 60},
			Labels:     GoodScale,
		},
	},
	KindReferral: {
		{
			Key:        "referral_completion",
			Label:      "Referral Completion Rate",
			Actual:     []string{"referrals_completed"},
			Expected:   Expectation{BaseFields: []string{"referrals_made"}},
			Thresholds: Thresholds{Good: 80, Warning: 60},
			Labels:     GoodScale,
		},
		{
			Key:        "followup_rate",
			Label:      "Post-Referral Follow-up Rate",
			Actual:     []string{"followups_done"},
			Expected:   Expectation{BaseFields: []string{"referrals_completed"}},
			Thresholds: Thresholds{Good: 90, Warning: 60},
			Labels:     GoodScale,
		},
		{
			Key:        "high_risk_referral",
			Label:      "High-Risk Pregnancy Referrals",
			Actual:     []string{"high_risk_referred"},
			Expected:   Expectation{TargetField: "high_risk_referred"},
			Thresholds: Thresholds{Good: 85, Warning: 70},
			Labels:     ExcellentScale,
		},
	},
}

// Catalog returns a copy of the built-in definitions for kind.
// Unknown kinds return nil.
func Catalog(kind Kind) []Definition {
	defs, ok := catalog[kind]
	if !ok {
		return nil
	}
	return cloneDefinitions(defs)
}

// WithThresholds returns a copy of defs with thresholds replaced for every key
// present in overrides.
func WithThresholds(defs []Definition, overrides map[string]Thresholds) []Definition {
	out := cloneDefinitions(defs)
	for i := range out {
		if t, ok := overrides[out[i].Key]; ok {
			out[i].Thresholds = t
		}
	}
	return out
}

func cloneDefinitions(defs []Definition) []Definition {
	out := make([]Definition, len(defs))
	for i, d := range defs {
		d.Actual = append([]string(nil), d.Actual...)
		d.Expected.BaseFields = append([]string(nil), d.Expected.BaseFields...)
		out[i] = d
	}
	return out
}
