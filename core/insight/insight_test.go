package insight

import (
	"fmt"
	"math"
	"testing"

	"github.com/FAHMIDA-78/copo/core/attain"
)

func testMatrix() attain.COPOMatrix {
	return attain.COPOMatrix{
		COs: []attain.CourseOutcome{
			{ID: "CO1", Maps: []bool{true, false}},
			{ID: "CO2", Maps: []bool{false, true}},
		},
		POs: []string{"PO1", "PO2"},
	}
}

func outcome(id string, points, co1, co2 float64) attain.StudentOutcome {
	return attain.StudentOutcome{
		Record: attain.StudentRecord{StudentID: id},
		Grade:  attain.GradeResult{Points: points},
		COAchievements: map[string]attain.Fraction{
			"CO1": attain.NewFraction(co1),
			"CO2": attain.NewFraction(co2),
		},
		POAttainments: map[string]attain.Fraction{
			"PO1": attain.NewFraction(co1),
			"PO2": attain.NewFraction(co2),
		},
	}
}

func TestAnalyze(t *testing.T) {
	res := &attain.BatchResult{}
	// three clearly separated performance tiers
	tiers := []struct{ points, lo, hi float64 }{
		{4.0, 0.9, 0.95},
		{2.7, 0.55, 0.6},
		{0.0, 0.1, 0.15},
	}
	for i, tier := range tiers {
		for j := 0; j < 3; j++ {
			id := fmt.Sprintf("STU%d%d", i, j)
			res.Outcomes = append(res.Outcomes,
				outcome(id, tier.points, tier.lo+float64(j)*0.01, tier.hi-float64(j)*0.01))
		}
	}

	a, err := Analyze(res, testMatrix())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if want := []string{"CO1", "CO2", "PO1", "PO2"}; len(a.Features) != len(want) || a.Features[0] != "CO1" || a.Features[3] != "PO2" {
		t.Errorf("Features = %v; want %v", a.Features, want)
	}
	if len(a.Clusters) != 3 {
		t.Errorf("got %d clusters; want 3", len(a.Clusters))
	}
	if len(a.Assignments) != len(res.Outcomes) {
		t.Errorf("got %d assignments; want %d", len(a.Assignments), len(res.Outcomes))
	}
	var total int
	for _, c := range a.Clusters {
		total += c.Size
	}
	if total != len(res.Outcomes) {
		t.Errorf("cluster sizes sum to %d; want %d", total, len(res.Outcomes))
	}

	// 9 rows and 2 COs is enough for the regression
	if len(a.Predictions) != len(res.Outcomes) {
		t.Fatalf("got %d predictions; want %d", len(a.Predictions), len(res.Outcomes))
	}
	for id, p := range a.Predictions {
		if p < 0 || p > 4 {
			t.Errorf("prediction for %s = %v; want within [0, 4]", id, p)
		}
	}
	// a top-tier student must predict higher than a bottom-tier one
	if a.Predictions["STU00"] <= a.Predictions["STU20"] {
		t.Errorf("predictions: top %v <= bottom %v", a.Predictions["STU00"], a.Predictions["STU20"])
	}
}

func TestAnalyzeSingleStudent(t *testing.T) {
	res := &attain.BatchResult{Outcomes: []attain.StudentOutcome{outcome("STU001", 3.7, 0.9, 0.8)}}

	a, err := Analyze(res, testMatrix())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Clusters) != 1 || a.Clusters[0].Size != 1 {
		t.Errorf("clusters = %+v; want one trivial group", a.Clusters)
	}
	if got := a.Assignments["STU001"]; got != 0 {
		t.Errorf("assignment = %d; want 0", got)
	}
	// too few rows for a prediction
	if len(a.Predictions) != 0 {
		t.Errorf("predictions = %v; want none", a.Predictions)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if _, err := Analyze(&attain.BatchResult{}, testMatrix()); err == nil {
		t.Error("Analyze() = nil error; want not enough data")
	}
}

func TestMinMaxScale(t *testing.T) {
	vecs := [][]float64{{0.2, 5}, {0.4, 5}, {0.6, 5}}
	minMaxScale(vecs)

	for i, want := range []float64{0, 0.5, 1} {
		if math.Abs(vecs[i][0]-want) > 1e-9 {
			t.Errorf("scaled column row %d = %v; want %v", i, vecs[i][0], want)
		}
	}
	// constant columns collapse to 0 instead of dividing by zero
	for i, v := range vecs {
		if v[1] != 0 {
			t.Errorf("constant column row %d = %v; want 0", i, v[1])
		}
	}
}
