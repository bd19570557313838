package attain

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/FAHMIDA-78/copo/core"
)

var errMarks = errors.New("invalid assessment marks")

// StudentRecord is one parsed row of the Student_Data sheet. It is built
// once at the ingestion boundary, validated, and never mutated afterwards.
type StudentRecord struct {
	Row int `json:"row"` // 1-based source row, for error reporting

	StudentID   string `json:"student_id" validate:"required"`
	Name        string `json:"student_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`

	CourseCode string  `json:"course_code" validate:"required"`
	CourseName string  `json:"course_name"`
	Semester   string  `json:"semester" validate:"required"`
	Credits    float64 `json:"credits" validate:"gte=0"`

	// Marks holds one raw mark per assessment component.
	Marks map[string]float64 `json:"marks"`
	// COTags maps a component name to the course outcomes its questions are
	// tagged to. The tagging comes from the upload, never inferred.
	COTags map[string][]string `json:"co_tags"`
}

func (r *StudentRecord) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

// TaggedMarks is one (component, earned, max) tuple attributed to a CO. A
// component tagged to n outcomes contributes earned/n and max/n to each.
type TaggedMarks struct {
	Component string  `json:"component"`
	Earned    float64 `json:"earned"`
	Max       float64 `json:"max"`
}

// TaggedByCO splits the record's component marks across the tagged course
// outcomes.
func (r *StudentRecord) TaggedByCO(comps []Component) map[string][]TaggedMarks {
	tags := make(map[string][]TaggedMarks)
	for _, c := range comps {
		cos := r.COTags[c.Name]
		if len(cos) == 0 {
			continue
		}
		mark, ok := r.Marks[c.Name]
		if !ok {
			continue
		}
		share := float64(len(cos))
		for _, co := range cos {
			tags[co] = append(tags[co], TaggedMarks{
				Component: c.Name,
				Earned:    mark / share,
				Max:       c.Max / share,
			})
		}
	}
	return tags
}

// StudentOutcome is the engine's per-student output: the grade plus the
// CO/PO attainment profile.
type StudentOutcome struct {
	Record         StudentRecord       `json:"record"`
	Grade          GradeResult         `json:"grade"`
	COAchievements map[string]Fraction `json:"co_achievements"`
	POAttainments  map[string]Fraction `json:"po_attainments"`
}

// RowError ties a per-student failure back to its source row. Row errors are
// collected, not fatal: one bad row never aborts the batch.
type RowError struct {
	Row       int               `json:"row"`
	StudentID string            `json:"student_id"`
	Message   string            `json:"message"`
	Fields    []core.FieldError `json:"fields,omitempty"`

	err error
}

func (e RowError) Error() string { return e.Message }
func (e RowError) Unwrap() error { return e.err }

func newRowError(row int, studentID string, err error) RowError {
	re := RowError{Row: row, StudentID: studentID, Message: err.Error(), err: err}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		re.Fields = vErr.Fields
	}
	return re
}
