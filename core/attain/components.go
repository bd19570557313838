package attain

import (
	"math"

	"github.com/pkg/errors"
)

// Component is one graded assessment component. Its weight in the final
// percentage is Max/100, so a valid component set has maxima summing to 100.
type Component struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

func (c Component) Weight() float64 { return c.Max / 100 }

// DefaultComponents is the standard assessment scheme: Mid 30, Final 40,
// Class Test 15, Assignment 10, Attendance 5.
var DefaultComponents = []Component{
	{Name: "mid", Max: 30},
	{Name: "final", Max: 40},
	{Name: "ct", Max: 15},
	{Name: "assignment", Max: 10},
	{Name: "attendance", Max: 5},
}

// ValidateComponents checks the weight invariant: component weights must sum
// to exactly 1.0 (maxima to 100) and every maximum must be positive.
func ValidateComponents(comps []Component) error {
	if len(comps) == 0 {
		return errors.New("no assessment components configured")
	}
	var total float64
	seen := make(map[string]bool, len(comps))
	for _, c := range comps {
		if c.Name == "" {
			return errors.New("assessment component with empty name")
		}
		if seen[c.Name] {
			return errors.Errorf("duplicate assessment component %q", c.Name)
		}
		seen[c.Name] = true
		if c.Max <= 0 {
			return errors.Errorf("assessment component %q has non-positive maximum", c.Name)
		}
		total += c.Weight()
	}
	if math.Abs(total-1.0) > 1e-9 {
		return errors.Errorf("component weights sum to %v, want 1.0", total)
	}
	return nil
}
