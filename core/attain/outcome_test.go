package attain

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func co(id string, maps ...int) CourseOutcome {
	flags := make([]bool, len(maps))
	for i, m := range maps {
		flags[i] = m != 0
	}
	return CourseOutcome{ID: id, Description: id + " description", Maps: flags}
}

func TestComputeCOAchievement(t *testing.T) {
	cos := []CourseOutcome{co("CO1", 1, 0), co("CO2", 0, 1), co("CO3", 1, 1)}

	tags := map[string][]TaggedMarks{
		"CO1": {
			{Component: "mid", Earned: 8, Max: 10},
			{Component: "final", Earned: 6, Max: 10},
		},
		"CO2": {
			{Component: "ct", Earned: 15, Max: 15},
		},
		// CO3 has no tagged tuples
	}

	got, err := ComputeCOAchievement(cos, tags)
	if err != nil {
		t.Fatalf("ComputeCOAchievement() error = %v", err)
	}

	// 14/20 = 0.70
	if ach := got["CO1"]; !ach.Known() || math.Abs(ach.Value-0.70) > 1e-9 {
		t.Errorf("CO1 = %+v; want Present 0.70", ach)
	}
	if ach := got["CO2"]; !ach.Known() || ach.Value != 1.0 {
		t.Errorf("CO2 = %+v; want Present 1.0", ach)
	}
	// no data is Absent, never 0
	if ach := got["CO3"]; ach.State != Absent {
		t.Errorf("CO3 = %+v; want Absent", ach)
	}
}

func TestComputeCOAchievementZeroMax(t *testing.T) {
	cos := []CourseOutcome{co("CO1", 1)}
	tags := map[string][]TaggedMarks{
		"CO1": {{Component: "mid", Earned: 0, Max: 0}},
	}
	_, err := ComputeCOAchievement(cos, tags)
	if !IsMappingError(err) {
		t.Errorf("ComputeCOAchievement() error = %v; want MappingError", err)
	}
}

func TestComputePOAttainment(t *testing.T) {
	// CO1 (0.70) maps PO1,PO2; CO2 (0.50) maps PO2 only; CO3 absent maps PO3.
	matrix := COPOMatrix{
		COs: []CourseOutcome{co("CO1", 1, 1, 0), co("CO2", 0, 1, 0), co("CO3", 0, 0, 1)},
		POs: []string{"PO1", "PO2", "PO3"},
	}
	achievements := map[string]Fraction{
		"CO1": NewFraction(0.70),
		"CO2": NewFraction(0.50),
		"CO3": NoFraction(),
	}

	got := ComputePOAttainment(matrix, achievements)

	if att := got["PO1"]; !att.Known() || math.Abs(att.Value-0.70) > 1e-9 {
		t.Errorf("PO1 = %+v; want 0.70", att)
	}
	if att := got["PO2"]; !att.Known() || math.Abs(att.Value-0.60) > 1e-9 {
		t.Errorf("PO2 = %+v; want mean(0.70, 0.50) = 0.60", att)
	}
	// every mapped CO is Absent, so the PO is Absent, never 0
	if att := got["PO3"]; att.State != Absent {
		t.Errorf("PO3 = %+v; want Absent", att)
	}
}

func TestComputePOAttainmentRowOrderInvariant(t *testing.T) {
	cos := []CourseOutcome{
		co("CO1", 1, 1, 0, 1), co("CO2", 0, 1, 1, 0),
		co("CO3", 1, 0, 1, 1), co("CO4", 1, 1, 1, 1),
	}
	achievements := map[string]Fraction{
		"CO1": NewFraction(0.70),
		"CO2": NewFraction(0.50),
		"CO3": NewFraction(0.90),
		"CO4": NewFraction(0.25),
	}
	pos := []string{"PO1", "PO2", "PO3", "PO4"}

	want := ComputePOAttainment(COPOMatrix{COs: cos, POs: pos}, achievements)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]CourseOutcome, len(cos))
		copy(shuffled, cos)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ComputePOAttainment(COPOMatrix{COs: shuffled, POs: pos}, achievements)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("permuted mapping rows changed output: got %+v, want %+v", got, want)
		}
	}
}

func TestCOPOMatrixValidate(t *testing.T) {
	tests := []struct {
		name    string
		matrix  COPOMatrix
		wantErr bool
	}{
		{
			name:   "valid",
			matrix: COPOMatrix{COs: []CourseOutcome{co("CO1", 1, 0)}, POs: []string{"PO1", "PO2"}},
		},
		{
			name:    "all-zero mapping row",
			matrix:  COPOMatrix{COs: []CourseOutcome{co("CO1", 0, 0)}, POs: []string{"PO1", "PO2"}},
			wantErr: true,
		},
		{
			name:    "flag count mismatch",
			matrix:  COPOMatrix{COs: []CourseOutcome{co("CO1", 1)}, POs: []string{"PO1", "PO2"}},
			wantErr: true,
		},
		{
			name:    "no COs",
			matrix:  COPOMatrix{POs: []string{"PO1"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.matrix.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsMappingError(err) {
				t.Errorf("Validate() error = %v; want MappingError", err)
			}
		})
	}
}
