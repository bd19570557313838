package attain

import "encoding/json"

// ScoreState distinguishes "no data" from "zero performance" and from
// malformed input. The zero value is Invalid so an uninitialized Fraction is
// never mistaken for a real score.
type ScoreState int

const (
	Invalid ScoreState = iota
	Absent             // no contributing data; excluded from aggregation
	Present
)

// Fraction is a three-state attainment value in [0, 1].
type Fraction struct {
	State ScoreState
	Value float64
}

func NewFraction(v float64) Fraction { return Fraction{State: Present, Value: v} }
func NoFraction() Fraction           { return Fraction{State: Absent} }

// Known reports whether the fraction carries a usable value.
func (f Fraction) Known() bool { return f.State == Present }

// Percent is the value as a percentage, for display.
func (f Fraction) Percent() float64 { return f.Value * 100 }

// MarshalJSON renders Present values as numbers and everything else as null,
// so consumers never see an absent score coerced to 0.
func (f Fraction) MarshalJSON() ([]byte, error) {
	if !f.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Fraction) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NoFraction()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NewFraction(v)
	return nil
}
