package batch

import (
	"time"

	"github.com/FAHMIDA-78/copo/core/attain"
	"github.com/FAHMIDA-78/copo/core/insight"
)

// Batch is the persisted summary of one marks upload.
type Batch struct {
	ID         string    `json:"id" db:"id"`
	CourseCode string    `json:"course_code" db:"course_code"`
	CourseName string    `json:"course_name" db:"course_name"`
	Semester   string    `json:"semester" db:"semester"`
	UploadedBy string    `json:"uploaded_by" db:"uploaded_by"`
	Students   int       `json:"students" db:"students"` // successfully processed rows
	Failed     int       `json:"failed" db:"failed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// StudentResult is one student's computed outcome within a batch, enriched
// with the advisory analytics when they were available.
type StudentResult struct {
	BatchID         string                `json:"batch_id"`
	Outcome         attain.StudentOutcome `json:"outcome"`
	Cluster         *int                  `json:"cluster,omitempty"`
	PredictedPoints *float64              `json:"predicted_points,omitempty"`
}

// ProcessedBatch is the full result of processing an upload.
type ProcessedBatch struct {
	Batch          Batch                 `json:"batch"`
	Matrix         attain.COPOMatrix     `json:"matrix"`
	PODescriptions map[string]string     `json:"po_descriptions,omitempty"`
	Results        []StudentResult       `json:"results"`
	RowErrors      []attain.RowError     `json:"row_errors,omitempty"`
	Aggregate      attain.ClassAggregate `json:"aggregate"`
	Insights       *insight.Analysis     `json:"insights,omitempty"`
}

// Upload is a parsed marks workbook, ready for processing. RowErrors carries
// rows the parser had to skip; they are merged with the engine's own row
// errors so the uploader sees every bad row in one response.
type Upload struct {
	Records        []attain.StudentRecord
	Matrix         attain.COPOMatrix
	PODescriptions map[string]string
	RowErrors      []attain.RowError
}
