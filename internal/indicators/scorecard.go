package indicators

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scorecard is one worker's indicators for a period.
type Scorecard struct {
	WorkerID    string             `json:"worker_id"`
	Totals      Totals             `json:"totals"`
	Indicators  []DerivedIndicator `json:"indicators"`
	MeanPercent float64            `json:"mean_percent"`
}

// Scorecards scores each worker separately. Records are grouped by worker id
// and aggregated. Region targets are split evenly across the workers present
// in records (see ShareTargets); counter-derived expectations are unaffected.
// The result is ordered by MeanPercent descending, then worker id ascending.
func Scorecards(kind Kind, defs []Definition, records []Record, targets *TargetSet) []Scorecard {
	byWorker := make(map[string][]Record)
	for _, r := range records {
		byWorker[r.WorkerID] = append(byWorker[r.WorkerID], r)
	}
	share := ShareTargets(targets, len(byWorker))

	out := make([]Scorecard, 0, len(byWorker))
	for id, rs := range byWorker {
		totals := Aggregate(kind, rs)
		inds := Build(defs, totals, share)
		out = append(out, Scorecard{
			WorkerID:    id,
			Totals:      totals,
			Indicators:  inds,
			MeanPercent: meanPercent(inds),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanPercent != out[j].MeanPercent {
			return out[i].MeanPercent > out[j].MeanPercent
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	return out
}

// ShareTargets returns a copy of targets with every expected count divided
// among workers, rounded half up. With a nil set or at most one worker,
// targets itself is returned.
func ShareTargets(targets *TargetSet, workers int) *TargetSet {
	if targets == nil || workers <= 1 {
		return targets
	}
	out := *targets
	out.Expected = make(map[string]int64, len(targets.Expected))
	n := int64(workers)
	for f, v := range targets.Expected {
		q, r := v/n, v%n
		if 2*r >= n {
			q++
		}
		out.Expected[f] = q
	}
	return &out
}

func meanPercent(inds []DerivedIndicator) float64 {
	if len(inds) == 0 {
		return 0
	}
	xs := make([]float64, len(inds))
	for i, ind := range inds {
		xs[i] = float64(ind.Percentage)
	}
	return stat.Mean(xs, nil)
}

// Summary describes how one indicator's percentage is spread across workers.
type Summary struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// ByLevel counts workers per band.
	ByLevel map[string]int `json:"by_level"`
}

// Distribution summarises the indicator named key across scorecards.
// Workers without that indicator are skipped. StdDev is the sample standard
// deviation and is 0 for fewer than two workers.
func Distribution(cards []Scorecard, key string) Summary {
	s := Summary{Key: key, ByLevel: map[string]int{}}
	var xs []float64
	for _, c := range cards {
		for _, ind := range c.Indicators {
			if ind.Key != key {
				continue
			}
			xs = append(xs, float64(ind.Percentage))
			s.ByLevel[ind.Level.String()]++
		}
	}
	s.Count = len(xs)
	if s.Count == 0 {
		return s
	}
	sort.Float64s(xs)
	s.Mean = stat.Mean(xs, nil)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	return s
}

// Distributions summarises every definition in order.
func Distributions(cards []Scorecard, defs []Definition) []Summary {
	out := make([]Summary, len(defs))
	for i, d := range defs {
		out[i] = Distribution(cards, d.Key)
	}
	return out
}
