package indicators

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	th := Thresholds{Good: 80, Warning: 60}
	tests := []struct {
		pct  int
		want Level
	}{
		{100, LevelTop},
		{80, LevelTop},
		{79, LevelMiddle},
		{60, LevelMiddle},
		{59, LevelLow},
		{0, LevelLow},
		{-5, LevelLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.pct, th), "pct=%d", tt.pct)
	}
}

func TestClassifyUsesSuppliedThresholds(t *testing.T) {
	pairs := []Thresholds{{80, 60}, {85, 70}, {90, 70}, {90, 60}}
	for _, th := range pairs {
		assert.Equal(t, LevelTop, Classify(th.Good, th))
		assert.Equal(t, LevelMiddle, Classify(th.Good-1, th))
		assert.Equal(t, LevelMiddle, Classify(th.Warning, th))
		assert.Equal(t, LevelLow, Classify(th.Warning-1, th))
	}
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, Thresholds{Good: 80, Warning: 60}.Validate())
	assert.Error(t, Thresholds{Good: 60, Warning: 60}.Validate())
	assert.Error(t, Thresholds{Good: 50, Warning: 60}.Validate())
}

func TestTierLabels(t *testing.T) {
	assert.Equal(t, "Excellent", ExcellentScale.Label(LevelTop))
	assert.Equal(t, "Good", ExcellentScale.Label(LevelMiddle))
	assert.Equal(t, "Needs Attention", ExcellentScale.Label(LevelLow))
	assert.Equal(t, "Good", GoodScale.Label(LevelTop))
	assert.Equal(t, "Fair", GoodScale.Label(LevelMiddle))
	assert.Equal(t, "Needs Improvement", GoodScale.Label(LevelLow))
	assert.Equal(t, "middle", TierLabels{}.Label(LevelMiddle))
}

func findIndicator(t *testing.T, inds []DerivedIndicator, key string) DerivedIndicator {
	t.Helper()
	for _, ind := range inds {
		if ind.Key == key {
			return ind
		}
	}
	t.Fatalf("indicator %q not found", key)
	return DerivedIndicator{}
}

func TestBuildEndToEndScenario(t *testing.T) {
	records := []Record{
		maternal("w1", map[string]int64{"pregnant_women_registered": 10, "anc3": 8}),
		maternal("w2", map[string]int64{"pregnant_women_registered": 20, "anc3": 15}),
	}
	totals := Aggregate(KindMaternal, records)
	require.Equal(t, int64(30), totals.Get("pregnant_women_registered"))
	require.Equal(t, int64(23), totals.Get("anc3"))

	targets := &TargetSet{
		Region:   "block-a",
		Kind:     KindMaternal,
		Period:   march2024,
		Expected: map[string]int64{"pregnant_women_registered": 30, "anc3": 30},
	}

	inds := Build(Catalog(KindMaternal), totals, targets)

	reg := findIndicator(t, inds, "registration_coverage")
	assert.Equal(t, 100, reg.Percentage)
	assert.Equal(t, LevelTop, reg.Level)
	assert.Equal(t, "Excellent", reg.Tier)
	assert.Equal(t, int64(0), reg.Gap)

	anc3 := findIndicator(t, inds, "anc3_coverage")
	assert.Equal(t, int64(23), anc3.Actual)
	assert.Equal(t, int64(30), anc3.Expected)
	assert.Equal(t, 77, anc3.Percentage)
	assert.Equal(t, LevelMiddle, anc3.Level)
	assert.Equal(t, int64(7), anc3.Gap)
}

func TestBuildOneEntryPerDefinitionWithoutTargets(t *testing.T) {
	for _, kind := range Kinds() {
		defs := Catalog(kind)
		inds := Build(defs, Aggregate(kind, nil), nil)

		require.Len(t, inds, len(defs), kind)
		for i, ind := range inds {
			assert.Equal(t, defs[i].Key, ind.Key)
			assert.Equal(t, 0, ind.Percentage)
			assert.Equal(t, LevelLow, ind.Level)
			assert.Equal(t, defs[i].Labels.Low, ind.Tier)
		}
	}
}

func TestBuildFallbackExpectation(t *testing.T) {
	totals := Aggregate(KindMaternal, []Record{
		maternal("w1", map[string]int64{"live_births": 10, "breastfed_within_1hr": 6}),
	})

	ind := findIndicator(t, Build(Catalog(KindMaternal), totals, nil), "timely_breastfeeding")

	assert.Equal(t, int64(8), ind.Expected, "80% of live births")
	assert.Equal(t, 75, ind.Percentage)
	assert.Equal(t, "Fair", ind.Tier)
	assert.Equal(t, int64(2), ind.Gap)
}

func TestEvaluateSaturatesOutOfRangeCounts(t *testing.T) {
	def := Definition{
		Key:        "huge",
		Actual:     []string{"a"},
		Expected:   Expectation{BaseFields: []string{"b"}, Fraction: 1e10},
		Thresholds: Thresholds{Good: 80, Warning: 60},
	}
	totals := Totals{Values: map[string]int64{"a": 0, "b": 9e18}}

	got := Evaluate(def, totals, nil)
	assert.Equal(t, int64(math.MaxInt64), got.Expected)
	assert.Equal(t, int64(math.MaxInt64), got.Gap)
	assert.Equal(t, 0, got.Percentage)

	over := Evaluate(Definition{
		Key:        "over",
		Actual:     []string{"a"},
		Expected:   Expectation{TargetField: "a"},
		Thresholds: Thresholds{Good: 80, Warning: 60},
	}, Totals{Values: map[string]int64{"a": 9e18}}, &TargetSet{Expected: map[string]int64{"a": 1}})
	assert.Equal(t, math.MaxInt, over.Percentage)
	assert.Equal(t, LevelTop, over.Level)
	assert.Equal(t, int64(0), over.Gap)
}

func TestBuildTargetOverridesFallback(t *testing.T) {
	totals := Aggregate(KindMaternal, []Record{
		maternal("w1", map[string]int64{"live_births": 10, "breastfed_within_1hr": 6}),
	})
	targets := &TargetSet{Kind: KindMaternal, Period: march2024, Expected: map[string]int64{"breastfed_within_1hr": 6}}

	ind := findIndicator(t, Build(Catalog(KindMaternal), totals, targets), "timely_breastfeeding")

	assert.Equal(t, int64(6), ind.Expected)
	assert.Equal(t, 100, ind.Percentage)
	assert.Equal(t, "Good", ind.Tier)
}

func TestBuildRatioOfTotals(t *testing.T) {
	totals := Aggregate(KindMaternal, []Record{
		maternal("w1", map[string]int64{"institutional_deliveries": 9, "home_deliveries": 1}),
	})

	ind := findIndicator(t, Build(Catalog(KindMaternal), totals, nil), "institutional_delivery")

	assert.Equal(t, int64(10), ind.Expected)
	assert.Equal(t, 90, ind.Percentage)
	assert.Equal(t, "Excellent", ind.Tier)
}

func TestBuildIsIdempotentAndConcurrent(t *testing.T) {
	totals := Aggregate(KindChild, []Record{
		{WorkerID: "w1", Kind: KindChild, Period: march2024, Counts: map[string]int64{"children_registered": 12, "fully_immunized": 9, "bcg": 11}},
	})
	targets := &TargetSet{Kind: KindChild, Period: march2024, Expected: map[string]int64{"newborn_visits": 4}}
	defs := Catalog(KindChild)

	want := Build(defs, totals, targets)

	var wg sync.WaitGroup
	results := make([][]DerivedIndicator, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Build(defs, totals, targets)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("run %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestWithThresholdsCopies(t *testing.T) {
	defs := Catalog(KindReferral)
	overridden := WithThresholds(defs, map[string]Thresholds{"referral_completion": {Good: 95, Warning: 75}})

	assert.Equal(t, Thresholds{Good: 95, Warning: 75}, overridden[0].Thresholds)
	assert.Equal(t, Thresholds{Good: 80, Warning: 60}, defs[0].Thresholds)
	assert.Equal(t, Thresholds{Good: 80, Warning: 60}, Catalog(KindReferral)[0].Thresholds)
}

func TestCatalogThresholdsAreOrdered(t *testing.T) {
	for _, kind := range Kinds() {
		defs := Catalog(kind)
		require.NotEmpty(t, defs, kind)
		schema, _ := SchemaFor(kind)
		for _, d := range defs {
			assert.NoError(t, d.Thresholds.Validate(), d.Key)
			for _, f := range append(append([]string(nil), d.Actual...), d.Expected.BaseFields...) {
				assert.True(t, schema.HasField(f), "%s references unknown field %s", d.Key, f)
			}
			if d.Expected.TargetField != "" {
				assert.True(t, schema.HasField(d.Expected.TargetField), "%s target %s", d.Key, d.Expected.TargetField)
			}
		}
	}
	assert.Nil(t, Catalog("unknown"))
}
