package attain

import (
	"fmt"

	"github.com/pkg/errors"
)

// MappingError reports structurally invalid CO/PO mapping data. Unlike row
// errors it aborts the whole batch: a broken matrix invalidates every
// student's PO computation.
type MappingError struct {
	Outcome string
	Reason  string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("invalid outcome mapping for %s: %s", e.Outcome, e.Reason)
}

// IsMappingError reports whether err is (or wraps) a MappingError.
func IsMappingError(err error) bool {
	var me *MappingError
	return errors.As(err, &me)
}

// CourseOutcome is one row of the CO_PO_Mapping sheet: a course outcome and
// the program outcomes it supports.
type CourseOutcome struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	// Maps holds one flag per program outcome, in matrix PO order.
	Maps []bool `json:"maps"`
}

// ProgramOutcome carries no numeric data of its own; its attainment is
// derived from the COs mapped to it.
type ProgramOutcome struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// COPOMatrix maps course outcomes onto program outcomes. COs and POs keep
// their declared order so every computation is reproducible regardless of
// input row order.
type COPOMatrix struct {
	COs []CourseOutcome `json:"cos"`
	POs []string        `json:"pos"`
}

// Validate checks the structural invariants: every CO row must span all POs
// and map to at least one of them. An all-zero mapping row is a data-entry
// error to surface, not to drop.
func (m *COPOMatrix) Validate() error {
	if len(m.POs) == 0 {
		return &MappingError{Outcome: "matrix", Reason: "no program outcomes declared"}
	}
	if len(m.COs) == 0 {
		return &MappingError{Outcome: "matrix", Reason: "no course outcomes declared"}
	}
	for _, co := range m.COs {
		if len(co.Maps) != len(m.POs) {
			return &MappingError{
				Outcome: co.ID,
				Reason:  fmt.Sprintf("mapping row has %d flags, want %d", len(co.Maps), len(m.POs)),
			}
		}
		var any bool
		for _, mapped := range co.Maps {
			if mapped {
				any = true
				break
			}
		}
		if !any {
			return &MappingError{Outcome: co.ID, Reason: "maps to no program outcome"}
		}
	}
	return nil
}

// ComputeCOAchievement computes, per course outcome, the fraction of marks
// earned on the components tagged to it: Σearned/Σmax clamped to [0, 1]. A
// CO with no tagged tuples is Absent ("no data"), never 0 ("no
// performance"). A CO whose tagged maximum is 0 is a configuration error.
func ComputeCOAchievement(cos []CourseOutcome, tags map[string][]TaggedMarks) (map[string]Fraction, error) {
	achievements := make(map[string]Fraction, len(cos))
	for _, co := range cos {
		tuples := tags[co.ID]
		if len(tuples) == 0 {
			achievements[co.ID] = NoFraction()
			continue
		}
		var earned, max float64
		for _, t := range tuples {
			earned += t.Earned
			max += t.Max
		}
		if max == 0 {
			return nil, &MappingError{Outcome: co.ID, Reason: "tagged components have zero total maximum"}
		}
		frac := earned / max
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		achievements[co.ID] = NewFraction(frac)
	}
	return achievements, nil
}

// ComputePOAttainment derives each program outcome's attainment as the
// unweighted arithmetic mean of the known achievements of its mapped course
// outcomes. A PO whose mapped COs are all Absent (or which has none) is
// Absent itself. Iteration follows the matrix's declared CO and PO order,
// so output never depends on input row order.
func ComputePOAttainment(m COPOMatrix, achievements map[string]Fraction) map[string]Fraction {
	attainments := make(map[string]Fraction, len(m.POs))
	for j, po := range m.POs {
		var sum float64
		var n int
		for _, co := range m.COs {
			if !co.Maps[j] {
				continue
			}
			if ach := achievements[co.ID]; ach.Known() {
				sum += ach.Value
				n++
			}
		}
		if n == 0 {
			attainments[po] = NoFraction()
			continue
		}
		attainments[po] = NewFraction(sum / float64(n))
	}
	return attainments
}
