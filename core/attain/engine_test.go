package attain

import (
	"math"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/FAHMIDA-78/copo/core"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	eng, err := NewEngine(validate)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return eng
}

func record(row int, id string, marks map[string]float64) StudentRecord {
	return StudentRecord{
		Row:         row,
		StudentID:   id,
		Name:        "Student " + id,
		Email:       id + "@test.test",
		ParentEmail: "parent." + id + "@test.test",
		CourseCode:  "CSE101",
		CourseName:  "Introduction to Programming",
		Semester:    "Fall 2024",
		Credits:     3,
		Marks:       marks,
		COTags: map[string][]string{
			"mid":        {"CO1", "CO2"},
			"final":      {"CO1", "CO2", "CO3"},
			"ct":         {"CO1"},
			"assignment": {"CO2", "CO3"},
		},
	}
}

func testMatrix() COPOMatrix {
	return COPOMatrix{
		COs: []CourseOutcome{
			co("CO1", 1, 1, 0, 0),
			co("CO2", 0, 1, 1, 0),
			co("CO3", 1, 0, 1, 0),
			co("CO4", 0, 0, 0, 1),
		},
		POs: []string{"PO1", "PO2", "PO3", "PO4"},
	}
}

func TestProcessBatch(t *testing.T) {
	eng := newTestEngine(t)

	records := []StudentRecord{
		record(2, "STU001", map[string]float64{"mid": 28, "final": 35, "ct": 13, "assignment": 9, "attendance": 5}),
		record(3, "STU002", map[string]float64{"mid": 15, "final": 20, "ct": 8, "assignment": 5, "attendance": 3}),
	}

	res, err := eng.ProcessBatch(records, testMatrix())
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(res.Outcomes) != 2 || len(res.RowErrors) != 0 {
		t.Fatalf("got %d outcomes, %d row errors; want 2, 0", len(res.Outcomes), len(res.RowErrors))
	}

	first := res.Outcomes[0]
	if first.Grade.Grade != "A+" || first.Grade.Points != 4.0 {
		t.Errorf("STU001 grade = (%s, %v); want (A+, 4.0)", first.Grade.Grade, first.Grade.Points)
	}
	// CO4 has no tagged components in the upload format
	if ach := first.COAchievements["CO4"]; ach.State != Absent {
		t.Errorf("CO4 achievement = %+v; want Absent", ach)
	}
	// PO4 is mapped only from CO4, so it stays Absent
	if att := first.POAttainments["PO4"]; att.State != Absent {
		t.Errorf("PO4 attainment = %+v; want Absent", att)
	}

	agg := res.Aggregate
	if agg.Students != 2 {
		t.Errorf("Aggregate.Students = %d; want 2", agg.Students)
	}
	if agg.GradeCounts["A+"] != 1 {
		t.Errorf("GradeCounts[A+] = %d; want 1", agg.GradeCounts["A+"])
	}
	if pa := agg.POAggregates["PO4"]; pa.Count != 0 || pa.Mean.Known() {
		t.Errorf("PO4 aggregate = %+v; want Count 0, Absent mean", pa)
	}
	if pa := agg.POAggregates["PO1"]; pa.Count != 2 {
		t.Errorf("PO1 aggregate count = %d; want 2", pa.Count)
	}
}

func TestProcessBatchPartialFailure(t *testing.T) {
	eng := newTestEngine(t)

	records := []StudentRecord{
		record(2, "STU001", map[string]float64{"mid": 28, "final": 35, "ct": 13, "assignment": 9, "attendance": 5}),
		// out of range mark
		record(3, "STU002", map[string]float64{"mid": 45, "final": 35, "ct": 13, "assignment": 9, "attendance": 5}),
		// missing component
		record(4, "STU003", map[string]float64{"mid": 20, "final": 30, "ct": 10, "assignment": 8}),
	}

	res, err := eng.ProcessBatch(records, testMatrix())
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v; bad rows must not abort the batch", err)
	}
	if len(res.Outcomes) != 1 {
		t.Errorf("got %d outcomes; want 1", len(res.Outcomes))
	}
	if len(res.RowErrors) != 2 {
		t.Fatalf("got %d row errors; want 2", len(res.RowErrors))
	}
	if res.RowErrors[0].Row != 3 || res.RowErrors[0].StudentID != "STU002" {
		t.Errorf("first row error = %+v; want row 3 / STU002", res.RowErrors[0])
	}
	if res.RowErrors[1].Row != 4 || res.RowErrors[1].StudentID != "STU003" {
		t.Errorf("second row error = %+v; want row 4 / STU003", res.RowErrors[1])
	}
	// failed rows are excluded from the aggregate, not counted as zeros
	if res.Aggregate.Students != 1 {
		t.Errorf("Aggregate.Students = %d; want 1", res.Aggregate.Students)
	}
}

func TestProcessBatchInvalidMatrixAborts(t *testing.T) {
	eng := newTestEngine(t)
	records := []StudentRecord{
		record(2, "STU001", map[string]float64{"mid": 28, "final": 35, "ct": 13, "assignment": 9, "attendance": 5}),
	}
	matrix := COPOMatrix{
		COs: []CourseOutcome{co("CO1", 0, 0)},
		POs: []string{"PO1", "PO2"},
	}
	if _, err := eng.ProcessBatch(records, matrix); !IsMappingError(err) {
		t.Errorf("ProcessBatch() error = %v; want MappingError abort", err)
	}
}

func TestAggregateIgnoresAbsent(t *testing.T) {
	outcomes := []StudentOutcome{
		{Grade: GradeResult{Grade: "A", Points: 3.7}, POAttainments: map[string]Fraction{"PO1": NewFraction(0.8)}},
		{Grade: GradeResult{Grade: "B", Points: 2.7}, POAttainments: map[string]Fraction{"PO1": NoFraction()}},
		{Grade: GradeResult{Grade: "A", Points: 3.7}, POAttainments: map[string]Fraction{"PO1": NewFraction(0.4)}},
	}

	agg := Aggregate([]string{"PO1"}, outcomes)

	pa := agg.POAggregates["PO1"]
	if pa.Count != 2 {
		t.Errorf("PO1 count = %d; want 2 (Absent never enters the denominator)", pa.Count)
	}
	if !pa.Mean.Known() || math.Abs(pa.Mean.Value-0.6) > 1e-9 {
		t.Errorf("PO1 mean = %+v; want mean(0.8, 0.4) = 0.6", pa.Mean)
	}
	if !agg.ClassGPA.Known() || math.Abs(agg.ClassGPA.Value-(3.7+2.7+3.7)/3) > 1e-9 {
		t.Errorf("ClassGPA = %+v; want %v", agg.ClassGPA, (3.7+2.7+3.7)/3)
	}
	if agg.GradeCounts["A"] != 2 || agg.GradeCounts["B"] != 1 {
		t.Errorf("GradeCounts = %+v; want A:2 B:1", agg.GradeCounts)
	}
}

func TestAggregateMedianAndStdDev(t *testing.T) {
	po1 := func(v float64) map[string]Fraction {
		return map[string]Fraction{"PO1": NewFraction(v)}
	}

	// even count: the median is the midpoint of the two middle values
	agg := Aggregate([]string{"PO1"}, []StudentOutcome{
		{Grade: GradeResult{Grade: "A"}, POAttainments: po1(0.8)},
		{Grade: GradeResult{Grade: "B"}, POAttainments: po1(0.4)},
	})
	pa := agg.POAggregates["PO1"]
	if !pa.Median.Known() || math.Abs(pa.Median.Value-0.6) > 1e-9 {
		t.Errorf("median of (0.4, 0.8) = %+v; want 0.6", pa.Median)
	}
	if want := math.Sqrt(0.08); !pa.StdDev.Known() || math.Abs(pa.StdDev.Value-want) > 1e-9 {
		t.Errorf("std dev of (0.4, 0.8) = %+v; want %v", pa.StdDev, want)
	}

	// odd count: the middle value
	agg = Aggregate([]string{"PO1"}, []StudentOutcome{
		{Grade: GradeResult{Grade: "A"}, POAttainments: po1(0.9)},
		{Grade: GradeResult{Grade: "B"}, POAttainments: po1(0.3)},
		{Grade: GradeResult{Grade: "A"}, POAttainments: po1(0.5)},
	})
	pa = agg.POAggregates["PO1"]
	if !pa.Median.Known() || math.Abs(pa.Median.Value-0.5) > 1e-9 {
		t.Errorf("median of (0.3, 0.5, 0.9) = %+v; want 0.5", pa.Median)
	}

	// a single known value carries a zero spread, not an Absent one
	agg = Aggregate([]string{"PO1"}, []StudentOutcome{
		{Grade: GradeResult{Grade: "A"}, POAttainments: po1(0.7)},
	})
	pa = agg.POAggregates["PO1"]
	if !pa.StdDev.Known() || pa.StdDev.Value != 0 {
		t.Errorf("std dev of a single value = %+v; want 0", pa.StdDev)
	}
}
