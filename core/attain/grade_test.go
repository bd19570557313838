package attain

import (
	"testing"

	"github.com/FAHMIDA-78/copo/core"
)

func validMarks() map[string]float64 {
	return map[string]float64{
		"mid": 28, "final": 35, "ct": 13, "assignment": 9, "attendance": 5,
	}
}

func marksSummingTo(t *testing.T, total float64) map[string]float64 {
	t.Helper()
	if total < 0 || total > 100 {
		t.Fatalf("marksSummingTo(%v): out of range", total)
	}
	marks := map[string]float64{"mid": 0, "final": 0, "ct": 0, "assignment": 0, "attendance": 0}
	for _, c := range DefaultComponents {
		take := total
		if take > c.Max {
			take = c.Max
		}
		marks[c.Name] = take
		total -= take
	}
	return marks
}

func TestGradeBands(t *testing.T) {
	tests := []struct {
		percentage float64
		wantGrade  string
		wantPoints float64
	}{
		{100, "A+", 4.0},
		{90, "A+", 4.0},
		{89.999, "A", 3.7},
		{85, "A", 3.7},
		{84.999, "A-", 3.3},
		{80, "A-", 3.3},
		{75, "B+", 3.0},
		{70, "B", 2.7},
		{65, "B-", 2.3},
		{60, "C+", 2.0},
		{55, "C", 1.7},
		{50, "C-", 1.3},
		{45, "D+", 1.0},
		{40, "D", 0.7},
		{39.999, "F", 0.0},
		{0, "F", 0.0},
	}
	for _, tt := range tests {
		res, err := ComputeGrade(DefaultComponents, marksSummingTo(t, tt.percentage))
		if err != nil {
			t.Fatalf("ComputeGrade(%v) error = %v", tt.percentage, err)
		}
		if res.Grade != tt.wantGrade || res.Points != tt.wantPoints {
			t.Errorf("ComputeGrade(%v) = (%s, %v); want (%s, %v)",
				tt.percentage, res.Grade, res.Points, tt.wantGrade, tt.wantPoints)
		}
	}
}

func TestComputeGrade(t *testing.T) {
	// 28+35+13+9+5 = 90, lands in the A+ band
	res, err := ComputeGrade(DefaultComponents, validMarks())
	if err != nil {
		t.Fatalf("ComputeGrade() error = %v", err)
	}
	if res.Percentage < 89.999 || res.Percentage > 90.001 {
		t.Errorf("Percentage = %v; want 90", res.Percentage)
	}
	if res.Grade != "A+" || res.Points != 4.0 {
		t.Errorf("grade = (%s, %v); want (A+, 4.0)", res.Grade, res.Points)
	}

	// pure: same input, same output
	again, err := ComputeGrade(DefaultComponents, validMarks())
	if err != nil {
		t.Fatalf("ComputeGrade() error = %v", err)
	}
	if again != res {
		t.Errorf("ComputeGrade() not deterministic: %+v != %+v", again, res)
	}
}

func TestComputeGradeValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]float64)
		wantField string
	}{
		{
			name:      "missing component",
			mutate:    func(m map[string]float64) { delete(m, "final") },
			wantField: "final",
		},
		{
			name:      "mark above maximum",
			mutate:    func(m map[string]float64) { m["mid"] = 31 },
			wantField: "mid",
		},
		{
			name:      "negative mark",
			mutate:    func(m map[string]float64) { m["ct"] = -1 },
			wantField: "ct",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks := validMarks()
			tt.mutate(marks)

			_, err := ComputeGrade(DefaultComponents, marks)
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("ComputeGrade() error = %v; want *core.ValidationError", err)
			}
			var found bool
			for _, f := range vErr.Fields {
				if f.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidationError fields = %+v; want field %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestValidateComponents(t *testing.T) {
	if err := ValidateComponents(DefaultComponents); err != nil {
		t.Errorf("ValidateComponents(DefaultComponents) = %v; want nil", err)
	}
	bad := []Component{{Name: "mid", Max: 30}, {Name: "final", Max: 40}}
	if err := ValidateComponents(bad); err == nil {
		t.Error("ValidateComponents() = nil; want weight invariant error")
	}
}
