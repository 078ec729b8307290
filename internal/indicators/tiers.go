package indicators

import "fmt"

// Level is an ordered performance band.
type Level int

const (
	LevelLow Level = iota
	LevelMiddle
	LevelTop
)

func (l Level) String() string {
	switch l {
	case LevelTop:
		return "top"
	case LevelMiddle:
		return "middle"
	default:
		return "low"
	}
}

// MarshalText lets Level appear as a word in JSON.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Thresholds are the lower bounds of the top (Good) and middle (Warning) bands.
// Good is expected to exceed Warning.
type Thresholds struct {
	Good    int `json:"good"`
	Warning int `json:"warning"`
}

// Validate checks the ordering of the thresholds.
func (t Thresholds) Validate() error {
	if t.Good <= t.Warning {
		return fmt.Errorf("good threshold (%d) must exceed warning threshold (%d)", t.Good, t.Warning)
	}
	return nil
}

// Classify places pct into a band. Both lower bounds are inclusive.
func Classify(pct int, t Thresholds) Level {
	switch {
	case pct >= t.Good:
		return LevelTop
	case pct >= t.Warning:
		return LevelMiddle
	default:
		return LevelLow
	}
}

// TierLabels names the three bands for a family of indicators.
type TierLabels struct {
	Top    string `json:"top"`
	Middle string `json:"middle"`
	Low    string `json:"low"`
}

var (
	// ExcellentScale is used by coverage indicators.
	ExcellentScale = TierLabels{Top: "Excellent", Middle: "Good", Low: "Needs Attention"}
	// GoodScale is used by outcome and follow-up indicators.
	GoodScale = TierLabels{Top: "Good", Middle: "Fair", Low: "Needs Improvement"}
)

// Label returns the name of level on this scale, falling back to the level name.
func (s TierLabels) Label(l Level) string {
	var name string
	switch l {
	case LevelTop:
		name = s.Top
	case LevelMiddle:
		name = s.Middle
	default:
		name = s.Low
	}
	if name == "" {
		return l.String()
	}
	return name
}
