package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	ok := maternal("w1", map[string]int64{"anc1": 3})

	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr error
	}{
		{"valid", func(r *Record) {}, nil},
		{"missing worker", func(r *Record) { r.WorkerID = " " }, ErrMissingWorker},
		{"unknown kind", func(r *Record) { r.Kind = "nutrition" }, ErrUnknownKind},
		{"bad month", func(r *Record) { r.Period.Month = 0 }, ErrInvalidPeriod},
		{"unknown field", func(r *Record) { r.Counts = map[string]int64{"bcg": 1} }, ErrUnknownField},
		{"negative counter", func(r *Record) { r.Counts = map[string]int64{"live_births": -1} }, ErrNegativeCounter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ok
			r.Counts = map[string]int64{"anc1": 3}
			tt.mutate(&r)
			err := Validate(r)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTargets(t *testing.T) {
	good := TargetSet{Region: "r", Kind: KindChild, Period: Period{Month: time.June, Year: 2024}, Expected: map[string]int64{"bcg": 20}}
	assert.NoError(t, ValidateTargets(good))

	bad := good
	bad.Expected = map[string]int64{"anc1": 3}
	assert.ErrorIs(t, ValidateTargets(bad), ErrUnknownField)

	neg := good
	neg.Expected = map[string]int64{"bcg": -2}
	assert.ErrorIs(t, ValidateTargets(neg), ErrNegativeCounter)

	noKind := good
	noKind.Kind = ""
	assert.ErrorIs(t, ValidateTargets(noKind), ErrUnknownKind)
}

func TestTargetSetLookupNil(t *testing.T) {
	var ts *TargetSet
	v, ok := ts.Lookup("anc3")
	assert.False(t, ok)
	assert.Zero(t, v)
}
