package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/asha.report/internal/indicators"
)

var demoWorkers = []Worker{
	{ID: "asha-001", Name: "Sunita Devi", Region: "block-a", Phone: "+91-90000-00001", Active: true},
	{ID: "asha-002", Name: "Meena Kumari", Region: "block-a", Phone: "+91-90000-00002", Active: true},
	{ID: "asha-003", Name: "Lakshmi Bai", Region: "block-b", Phone: "+91-90000-00003", Active: true},
}

// SeedDemo loads a small fixed data set for period: three workers across two
// regions, one record per worker and kind, and block-a targets. Running it
// again overwrites the seeded records.
func (db *DB) SeedDemo(ctx context.Context, period indicators.Period) error {
	for i := range demoWorkers {
		w := demoWorkers[i]
		if err := db.CreateWorker(ctx, &w); err != nil && !errors.Is(err, ErrDuplicateWorker) {
			return fmt.Errorf("seed worker %s: %w", w.ID, err)
		}
	}

	for i, w := range demoWorkers {
		scale := int64(i + 1)
		records := []indicators.Record{
			{WorkerID: w.ID, Kind: indicators.KindMaternal, Period: period, Counts: map[string]int64{
				"pregnant_women_registered":     8 + 2*scale,
				"first_trimester_registrations": 5 + scale,
				"anc1":                          8 + scale,
				"anc3":                          5 + 2*scale,
				"tt2_booster":                   6 + scale,
				"institutional_deliveries":      3 + scale,
				"home_deliveries":               4 - scale,
				"live_births":                   4 + scale,
				"breastfed_within_1hr":          2 + scale,
			}},
			{WorkerID: w.ID, Kind: indicators.KindChild, Period: period, Counts: map[string]int64{
				"children_registered": 10 + 3*scale,
				"newborn_visits":      3 + scale,
				"bcg":                 9 + 2*scale,
				"measles1":            7 + 2*scale,
				"fully_immunized":     6 + 3*scale,
				"diarrhoea_cases":     4,
				"ors_given":           1 + scale,
			}},
			{WorkerID: w.ID, Kind: indicators.KindReferral, Period: period, Counts: map[string]int64{
				"referrals_made":      6,
				"referrals_completed": 2 + scale,
				"high_risk_referred":  scale,
				"followups_done":      1 + scale,
			}},
		}
		for j := range records {
			if err := db.UpsertRecord(ctx, &records[j]); err != nil {
				return fmt.Errorf("seed record %s %s: %w", w.ID, records[j].Kind, err)
			}
		}
	}

	targets := []indicators.TargetSet{
		{Region: "block-a", Kind: indicators.KindMaternal, Period: period, Expected: map[string]int64{
			"pregnant_women_registered": 24,
			"anc3":                      20,
			"tt2_booster":               20,
		}},
		{Region: "block-a", Kind: indicators.KindChild, Period: period, Expected: map[string]int64{
			"children_registered": 30,
			"fully_immunized":     28,
			"bcg":                 28,
			"measles1":            26,
			"newborn_visits":      10,
		}},
		{Region: "block-a", Kind: indicators.KindReferral, Period: period, Expected: map[string]int64{
			"high_risk_referred": 4,
		}},
	}
	for _, t := range targets {
		if err := db.SetTargets(ctx, t); err != nil {
			return fmt.Errorf("seed targets %s %s: %w", t.Region, t.Kind, err)
		}
	}
	return nil
}
