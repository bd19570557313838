package batch

import (
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/FAHMIDA-78/copo/core"
	"github.com/FAHMIDA-78/copo/core/attain"
	"github.com/FAHMIDA-78/copo/core/insight"
)

var ErrNotFound = errors.New("batch not found")

type (
	Repository interface {
		SaveBatch(pb ProcessedBatch) error
		QueryAllBatches() ([]Batch, error)
		GetBatchByID(id string) (ProcessedBatch, error)
		GetStudentResult(batchID, studentID string) (StudentResult, error)
		DeleteBatchesByID(ids ...string) error
	}

	Service struct {
		repo    Repository
		engine  *attain.Engine
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, eng *attain.Engine, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		engine:  eng,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Process computes and persists the outcomes for one upload. A broken CO-PO
// matrix aborts the whole upload; bad student rows are reported per row and
// the rest of the batch goes through.
func (svc *Service) Process(up Upload, uploadedBy string) (ProcessedBatch, error) {
	if len(up.Records) == 0 && len(up.RowErrors) == 0 {
		return ProcessedBatch{}, core.NewValidationError(
			errors.New("empty upload"),
			core.FieldError{Field: "file", Error: "the workbook contains no student rows"},
		)
	}

	res, err := svc.engine.ProcessBatch(up.Records, up.Matrix)
	if err != nil {
		return ProcessedBatch{}, err
	}

	rowErrs := append(up.RowErrors, res.RowErrors...)
	sort.SliceStable(rowErrs, func(i, j int) bool { return rowErrs[i].Row < rowErrs[j].Row })

	pb := ProcessedBatch{
		Batch:          newBatch(up, res, uploadedBy),
		Matrix:         up.Matrix,
		PODescriptions: up.PODescriptions,
		RowErrors:      rowErrs,
		Aggregate:      res.Aggregate,
	}
	pb.Batch.Failed = len(rowErrs)

	// analytics are advisory; never fail a batch over them
	analysis, err := insight.Analyze(res, up.Matrix)
	if err != nil {
		if !errors.Is(err, insight.ErrNotEnoughData) {
			svc.logger.Warn(fmt.Sprintf("batch %s: analytics skipped: %v", pb.Batch.ID, err))
		}
	} else {
		pb.Insights = analysis
	}

	for _, o := range res.Outcomes {
		sr := StudentResult{BatchID: pb.Batch.ID, Outcome: o}
		if pb.Insights != nil {
			if c, ok := pb.Insights.Assignments[o.Record.StudentID]; ok {
				c := c
				sr.Cluster = &c
			}
			if p, ok := pb.Insights.Predictions[o.Record.StudentID]; ok {
				p := p
				sr.PredictedPoints = &p
			}
		}
		pb.Results = append(pb.Results, sr)
	}

	if err := svc.repo.SaveBatch(pb); err != nil {
		return ProcessedBatch{}, errors.Wrap(err, "saving batch")
	}
	return pb, nil
}

func newBatch(up Upload, res *attain.BatchResult, uploadedBy string) Batch {
	b := Batch{
		ID:         uuid.NewString(),
		UploadedBy: uploadedBy,
		Students:   len(res.Outcomes),
		CreatedAt:  time.Now().UTC(),
	}
	if len(up.Records) > 0 {
		rec := up.Records[0]
		b.CourseCode = rec.CourseCode
		b.CourseName = rec.CourseName
		b.Semester = rec.Semester
	}
	return b
}

func (svc *Service) QueryAll() ([]Batch, error) {
	return svc.repo.QueryAllBatches()
}

func (svc *Service) GetByID(id string) (ProcessedBatch, error) {
	return svc.repo.GetBatchByID(id)
}

func (svc *Service) GetStudentResult(batchID, studentID string) (StudentResult, error) {
	return svc.repo.GetStudentResult(batchID, studentID)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteBatchesByID(ids...)
}

// reportData is the template context for result report emails.
type reportData struct {
	Batch     Batch
	Result    StudentResult
	Aggregate attain.ClassAggregate
	POOrder   []string
}

// SendReports emails every student in the batch their individual result
// report, and optionally their parent a copy.
func (svc *Service) SendReports(batchID string, includeParents bool) (int, error) {
	pb, err := svc.repo.GetBatchByID(batchID)
	if err != nil {
		return 0, err
	}

	subject := fmt.Sprintf("Result report: %s (%s)", pb.Batch.CourseCode, pb.Batch.Semester)
	var msgs []*core.EmailMessage
	for _, sr := range pb.Results {
		rec := sr.Outcome.Record
		data := reportData{Batch: pb.Batch, Result: sr, Aggregate: pb.Aggregate, POOrder: pb.Matrix.POs}

		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: rec.Name, Address: rec.Email}},
			Subject:      subject,
			TemplateName: "student-report",
			TemplateData: data,
		})
		if includeParents && rec.ParentEmail != "" {
			msgs = append(msgs, &core.EmailMessage{
				To:           []mail.Address{{Address: rec.ParentEmail}},
				Subject:      subject,
				TemplateName: "parent-report",
				TemplateData: data,
			})
		}
	}
	svc.mailSvc.SendMessages(msgs...)
	return len(msgs), nil
}
