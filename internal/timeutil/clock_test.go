package timeutil

import (
	"sync"
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)

	if d := clock.Since(past); d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestMockClock_SetAndAdvance(t *testing.T) {
	start := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	clock.Advance(2 * time.Hour)
	if got := clock.Now().Month(); got != time.April {
		t.Errorf("month after advance = %v, want April", got)
	}
	if d := clock.Since(start); d != 2*time.Hour {
		t.Errorf("Since() = %v, want 2h", d)
	}

	later := start.AddDate(1, 0, 0)
	clock.Set(later)
	if got := clock.Now(); !got.Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", got, later)
	}
}

func TestMockClock_ConcurrentAccess(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	if got := clock.Since(time.Unix(0, 0)); got != 10*time.Second {
		t.Errorf("Since() = %v, want 10s", got)
	}
}

func TestInLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on 31 March is already 1 April in India.
	base := NewMockClock(time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC))

	local := InLocation(base, ist)
	now := local.Now()
	if now.Month() != time.April || now.Day() != 1 {
		t.Errorf("local Now() = %v, want 1 April", now)
	}
	if d := local.Since(base.Now().Add(-time.Minute)); d != time.Minute {
		t.Errorf("Since() = %v, want 1m", d)
	}

	if InLocation(base, nil) != Clock(base) {
		t.Error("nil location should return the base clock")
	}
}
