package attain

import (
	"fmt"

	"github.com/FAHMIDA-78/copo/core"
)

// GradeBand is one band of the 12-level grading scale. Floor is inclusive.
type GradeBand struct {
	Floor  float64 `json:"floor"`
	Grade  string  `json:"grade"`
	Points float64 `json:"points"`
}

// GradeBands is the 4.0-scale grading table, highest band first. The final
// F band catches everything below 40.
var GradeBands = []GradeBand{
	{Floor: 90, Grade: "A+", Points: 4.0},
	{Floor: 85, Grade: "A", Points: 3.7},
	{Floor: 80, Grade: "A-", Points: 3.3},
	{Floor: 75, Grade: "B+", Points: 3.0},
	{Floor: 70, Grade: "B", Points: 2.7},
	{Floor: 65, Grade: "B-", Points: 2.3},
	{Floor: 60, Grade: "C+", Points: 2.0},
	{Floor: 55, Grade: "C", Points: 1.7},
	{Floor: 50, Grade: "C-", Points: 1.3},
	{Floor: 45, Grade: "D+", Points: 1.0},
	{Floor: 40, Grade: "D", Points: 0.7},
}

// GradeResult is the derived grade of one student record.
type GradeResult struct {
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	Points     float64 `json:"points"`
}

// gradeFor scans the bands top-down; the first band whose floor is at or
// below the percentage wins.
func gradeFor(percentage float64) (string, float64) {
	for _, b := range GradeBands {
		if percentage >= b.Floor {
			return b.Grade, b.Points
		}
	}
	return "F", 0.0
}

// ComputeGrade derives the weighted percentage and grade for one set of raw
// component marks. Every configured component must be present and within
// [0, max]; violations come back as a core.ValidationError naming the
// offending component. Since component weights equal max/100, the weighted
// percentage reduces to the plain sum of raw marks.
func ComputeGrade(comps []Component, marks map[string]float64) (GradeResult, error) {
	var percentage float64
	var fldErrs []core.FieldError

	for _, c := range comps {
		mark, ok := marks[c.Name]
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{
				Field: c.Name,
				Error: "missing mark",
			})
			continue
		}
		if mark < 0 || mark > c.Max {
			fldErrs = append(fldErrs, core.FieldError{
				Field: c.Name,
				Error: fmt.Sprintf("mark %v out of range [0, %v]", mark, c.Max),
			})
			continue
		}
		// mark/max * weight * 100 with weight = max/100, i.e. the raw mark
		percentage += mark
	}
	if len(fldErrs) > 0 {
		return GradeResult{}, core.NewValidationError(errMarks, fldErrs...)
	}

	grade, points := gradeFor(percentage)
	return GradeResult{Percentage: percentage, Grade: grade, Points: points}, nil
}
