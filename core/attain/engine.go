// Package attain implements the CGPA / CO / PO attainment computation
// engine: weighted grade computation on a 12-band 4.0 scale, per-student
// course-outcome achievement, program-outcome attainment through the mapping
// matrix, and class-level aggregation. The engine is pure; ingestion
// and reporting live with its collaborators.
package attain

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Engine processes upload batches against a fixed component scheme. It holds
// no mutable state, so one engine may serve concurrent batches.
type Engine struct {
	comps    []Component
	validate *validator.Validate
}

// NewEngine builds an engine for the given assessment components
// (DefaultComponents when none are given). The component weight invariant is
// checked once here, not per batch.
func NewEngine(validate *validator.Validate, comps ...[]Component) (*Engine, error) {
	cs := DefaultComponents
	if len(comps) > 0 {
		cs = comps[0]
	}
	if err := ValidateComponents(cs); err != nil {
		return nil, errors.Wrap(err, "validating assessment components")
	}
	return &Engine{comps: cs, validate: validate}, nil
}

func (e *Engine) Components() []Component { return e.comps }

// BatchResult is the engine's output for one upload batch: the successful
// per-student outcomes, the row-indexed failures, and the class aggregate
// over the successes.
type BatchResult struct {
	Outcomes  []StudentOutcome `json:"outcomes"`
	RowErrors []RowError       `json:"row_errors"`
	Aggregate ClassAggregate   `json:"aggregate"`
}

// ProcessBatch runs the full pipeline over one batch as a single sequential
// pass: per-student grade, CO achievement and PO attainment, then the class
// aggregate. Per-student validation failures are collected as row errors and
// processing continues; a structural MappingError aborts the batch.
func (e *Engine) ProcessBatch(records []StudentRecord, matrix COPOMatrix) (*BatchResult, error) {
	if err := matrix.Validate(); err != nil {
		return nil, err
	}

	res := &BatchResult{
		Outcomes: make([]StudentOutcome, 0, len(records)),
	}
	for _, rec := range records {
		rec := rec
		if err := rec.Validate(e.validate); err != nil {
			res.RowErrors = append(res.RowErrors, newRowError(rec.Row, rec.StudentID, err))
			continue
		}

		grade, err := ComputeGrade(e.comps, rec.Marks)
		if err != nil {
			res.RowErrors = append(res.RowErrors, newRowError(rec.Row, rec.StudentID, err))
			continue
		}

		achievements, err := ComputeCOAchievement(matrix.COs, rec.TaggedByCO(e.comps))
		if err != nil {
			// zero-max tagging is a configuration problem, not a row problem
			return nil, err
		}

		res.Outcomes = append(res.Outcomes, StudentOutcome{
			Record:         rec,
			Grade:          grade,
			COAchievements: achievements,
			POAttainments:  ComputePOAttainment(matrix, achievements),
		})
	}

	res.Aggregate = Aggregate(matrix.POs, res.Outcomes)
	return res, nil
}
