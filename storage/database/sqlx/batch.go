package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/FAHMIDA-78/copo/core/batch"
	"github.com/FAHMIDA-78/copo/core/insight"
)

type batchRepository struct {
	db *sqlx.DB
}

var _ batch.Repository = (*batchRepository)(nil)

func NewBatchRepository(db *sqlx.DB) *batchRepository {
	return &batchRepository{db: db}
}

// batchRow stores the computed parts of a batch as JSON text so the schema
// stays portable across postgres and sqlite.
type batchRow struct {
	ID             string    `db:"id"`
	CourseCode     string    `db:"course_code"`
	CourseName     string    `db:"course_name"`
	Semester       string    `db:"semester"`
	UploadedBy     string    `db:"uploaded_by"`
	Students       int       `db:"students"`
	Failed         int       `db:"failed"`
	Matrix         []byte    `db:"matrix"`
	PODescriptions []byte    `db:"po_descriptions"`
	RowErrors      []byte    `db:"row_errors"`
	Aggregate      []byte    `db:"aggregate"`
	Insights       []byte    `db:"insights"`
	CreatedAt      time.Time `db:"created_at"`
}

type resultRow struct {
	BatchID         string          `db:"batch_id"`
	StudentID       string          `db:"student_id"`
	Outcome         []byte          `db:"outcome"`
	Cluster         sql.NullInt64   `db:"cluster"`
	PredictedPoints sql.NullFloat64 `db:"predicted_points"`
}

const batchColumns = `id, course_code, course_name, semester, uploaded_by, students, failed,
	matrix, po_descriptions, row_errors, aggregate, insights, created_at`

func newBatchRow(pb batch.ProcessedBatch) (batchRow, error) {
	row := batchRow{
		ID:         pb.Batch.ID,
		CourseCode: pb.Batch.CourseCode,
		CourseName: pb.Batch.CourseName,
		Semester:   pb.Batch.Semester,
		UploadedBy: pb.Batch.UploadedBy,
		Students:   pb.Batch.Students,
		Failed:     pb.Batch.Failed,
		CreatedAt:  pb.Batch.CreatedAt,
	}
	var err error
	if row.Matrix, err = json.Marshal(pb.Matrix); err != nil {
		return batchRow{}, errors.Wrap(err, "encoding matrix")
	}
	if row.PODescriptions, err = json.Marshal(pb.PODescriptions); err != nil {
		return batchRow{}, errors.Wrap(err, "encoding PO descriptions")
	}
	if row.RowErrors, err = json.Marshal(pb.RowErrors); err != nil {
		return batchRow{}, errors.Wrap(err, "encoding row errors")
	}
	if row.Aggregate, err = json.Marshal(pb.Aggregate); err != nil {
		return batchRow{}, errors.Wrap(err, "encoding aggregate")
	}
	if pb.Insights != nil {
		if row.Insights, err = json.Marshal(pb.Insights); err != nil {
			return batchRow{}, errors.Wrap(err, "encoding insights")
		}
	}
	return row, nil
}

func (r batchRow) toProcessedBatch() (batch.ProcessedBatch, error) {
	pb := batch.ProcessedBatch{
		Batch: batch.Batch{
			ID:         r.ID,
			CourseCode: r.CourseCode,
			CourseName: r.CourseName,
			Semester:   r.Semester,
			UploadedBy: r.UploadedBy,
			Students:   r.Students,
			Failed:     r.Failed,
			CreatedAt:  r.CreatedAt,
		},
	}
	if err := json.Unmarshal(r.Matrix, &pb.Matrix); err != nil {
		return batch.ProcessedBatch{}, errors.Wrap(err, "decoding matrix")
	}
	if len(r.PODescriptions) > 0 {
		if err := json.Unmarshal(r.PODescriptions, &pb.PODescriptions); err != nil {
			return batch.ProcessedBatch{}, errors.Wrap(err, "decoding PO descriptions")
		}
	}
	if len(r.RowErrors) > 0 {
		if err := json.Unmarshal(r.RowErrors, &pb.RowErrors); err != nil {
			return batch.ProcessedBatch{}, errors.Wrap(err, "decoding row errors")
		}
	}
	if err := json.Unmarshal(r.Aggregate, &pb.Aggregate); err != nil {
		return batch.ProcessedBatch{}, errors.Wrap(err, "decoding aggregate")
	}
	if len(r.Insights) > 0 {
		pb.Insights = new(insight.Analysis)
		if err := json.Unmarshal(r.Insights, pb.Insights); err != nil {
			return batch.ProcessedBatch{}, errors.Wrap(err, "decoding insights")
		}
	}
	return pb, nil
}

func (r resultRow) toStudentResult() (batch.StudentResult, error) {
	sr := batch.StudentResult{BatchID: r.BatchID}
	if err := json.Unmarshal(r.Outcome, &sr.Outcome); err != nil {
		return batch.StudentResult{}, errors.Wrap(err, "decoding outcome")
	}
	if r.Cluster.Valid {
		c := int(r.Cluster.Int64)
		sr.Cluster = &c
	}
	if r.PredictedPoints.Valid {
		p := r.PredictedPoints.Float64
		sr.PredictedPoints = &p
	}
	return sr, nil
}

func (repo batchRepository) SaveBatch(pb batch.ProcessedBatch) error {
	row, err := newBatchRow(pb)
	if err != nil {
		return err
	}

	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "opening transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExec(`
		INSERT INTO batches (`+batchColumns+`)
		VALUES (:id, :course_code, :course_name, :semester, :uploaded_by, :students, :failed,
		        :matrix, :po_descriptions, :row_errors, :aggregate, :insights, :created_at)`,
		row)
	if err != nil {
		return errors.Wrap(err, "inserting batch")
	}

	for _, sr := range pb.Results {
		outcome, err := json.Marshal(sr.Outcome)
		if err != nil {
			return errors.Wrap(err, "encoding outcome")
		}
		rr := resultRow{
			BatchID:   pb.Batch.ID,
			StudentID: sr.Outcome.Record.StudentID,
			Outcome:   outcome,
		}
		if sr.Cluster != nil {
			rr.Cluster = sql.NullInt64{Int64: int64(*sr.Cluster), Valid: true}
		}
		if sr.PredictedPoints != nil {
			rr.PredictedPoints = sql.NullFloat64{Float64: *sr.PredictedPoints, Valid: true}
		}
		_, err = tx.NamedExec(`
			INSERT INTO batch_results (batch_id, student_id, outcome, cluster, predicted_points)
			VALUES (:batch_id, :student_id, :outcome, :cluster, :predicted_points)`,
			rr)
		if err != nil {
			return errors.Wrap(err, "inserting batch result")
		}
	}

	return errors.Wrap(tx.Commit(), "committing batch")
}

func (repo batchRepository) QueryAllBatches() ([]batch.Batch, error) {
	var rows []batchRow
	err := repo.db.Select(&rows, `SELECT `+batchColumns+` FROM batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying batches")
	}
	batches := make([]batch.Batch, 0, len(rows))
	for _, row := range rows {
		pb, err := row.toProcessedBatch()
		if err != nil {
			return nil, err
		}
		batches = append(batches, pb.Batch)
	}
	return batches, nil
}

func (repo batchRepository) GetBatchByID(id string) (batch.ProcessedBatch, error) {
	var row batchRow
	err := repo.db.Get(&row, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return batch.ProcessedBatch{}, batch.ErrNotFound
		}
		return batch.ProcessedBatch{}, errors.Wrap(err, "querying batch")
	}
	pb, err := row.toProcessedBatch()
	if err != nil {
		return batch.ProcessedBatch{}, err
	}

	var resRows []resultRow
	err = repo.db.Select(&resRows,
		`SELECT batch_id, student_id, outcome, cluster, predicted_points
		 FROM batch_results WHERE batch_id = $1 ORDER BY student_id`, id)
	if err != nil {
		return batch.ProcessedBatch{}, errors.Wrap(err, "querying batch results")
	}
	for _, rr := range resRows {
		sr, err := rr.toStudentResult()
		if err != nil {
			return batch.ProcessedBatch{}, err
		}
		pb.Results = append(pb.Results, sr)
	}
	return pb, nil
}

func (repo batchRepository) GetStudentResult(batchID, studentID string) (batch.StudentResult, error) {
	var rr resultRow
	err := repo.db.Get(&rr,
		`SELECT batch_id, student_id, outcome, cluster, predicted_points
		 FROM batch_results WHERE batch_id = $1 AND student_id = $2`, batchID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return batch.StudentResult{}, batch.ErrNotFound
		}
		return batch.StudentResult{}, errors.Wrap(err, "querying batch result")
	}
	return rr.toStudentResult()
}

func (repo batchRepository) DeleteBatchesByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	// delete results explicitly; sqlite may run without foreign keys enforced
	q, args, err := sqlx.In(`DELETE FROM batch_results WHERE batch_id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting batch results")
	}
	q, args, err = sqlx.In(`DELETE FROM batches WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting batches")
	}
	return nil
}
