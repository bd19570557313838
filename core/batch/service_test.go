package batch_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/FAHMIDA-78/copo/core"
	"github.com/FAHMIDA-78/copo/core/attain"
	"github.com/FAHMIDA-78/copo/core/batch"
	emailsvc "github.com/FAHMIDA-78/copo/services/email"
	inmemdb "github.com/FAHMIDA-78/copo/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T) (*batch.Service, batch.Repository) {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true
	core.ParseEmailTemplates(conf, nopLogger{})

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	eng, err := attain.NewEngine(validate)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	db := inmemdb.NewDB()
	repo := inmemdb.NewBatchRepository(db)
	svc := batch.NewService(repo, eng, emailsvc.NewConsoleServiceMock(conf), nopLogger{})
	return svc, repo
}

func testRecord(row int, id string, marks map[string]float64) attain.StudentRecord {
	return attain.StudentRecord{
		Row:         row,
		StudentID:   id,
		Name:        "Student " + id,
		Email:       strings.ToLower(id) + "@test.test",
		ParentEmail: "parent." + strings.ToLower(id) + "@test.test",
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

func testUpload() batch.Upload {
	co := func(id string, maps ...bool) attain.CourseOutcome {
		return attain.CourseOutcome{ID: id, Maps: maps}
	}
	return batch.Upload{
		Records: []attain.StudentRecord{
			testRecord(2, "STU001", map[string]float64{"mid": 28, "final": 35, "ct": 13, "assignment": 9, "attendance": 5}),
			testRecord(3, "STU002", map[string]float64{"mid": 15, "final": 20, "ct": 8, "assignment": 5, "attendance": 3}),
			testRecord(4, "STU003", map[string]float64{"mid": 22, "final": 30, "ct": 10, "assignment": 7, "attendance": 4}),
		},
		Matrix: attain.COPOMatrix{
			COs: []attain.CourseOutcome{
				co("CO1", true, true, false),
				co("CO2", false, true, true),
				co("CO3", true, false, true),
			},
			POs: []string{"PO1", "PO2", "PO3"},
		},
		PODescriptions: map[string]string{"PO1": "Engineering Knowledge"},
	}
}

func TestProcess(t *testing.T) {
	svc, repo := newTestService(t)

	up := testUpload()
	up.RowErrors = []attain.RowError{{Row: 5, StudentID: "STU004", Message: "mid_marks: \"abc\" is not a number"}}

	pb, err := svc.Process(up, "teacher-1")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	b := pb.Batch
	if b.ID == "" {
		t.Error("Batch.ID is empty")
	}
	if b.CourseCode != "CSE101" || b.Semester != "Fall 2024" || b.UploadedBy != "teacher-1" {
		t.Errorf("batch = %+v; want CSE101 / Fall 2024 / teacher-1", b)
	}
	if b.Students != 3 || b.Failed != 1 {
		t.Errorf("batch counts = %d/%d; want 3 processed, 1 failed", b.Students, b.Failed)
	}
	if len(pb.Results) != 3 {
		t.Fatalf("got %d results; want 3", len(pb.Results))
	}
	// clustering covers small batches too; every student gets a group
	if pb.Insights == nil {
		t.Fatal("Insights = nil; want clustering output")
	}
	for _, sr := range pb.Results {
		if sr.Cluster == nil {
			t.Errorf("student %s has no cluster", sr.Outcome.Record.StudentID)
		}
	}

	// the processed batch must be retrievable as stored
	stored, err := repo.GetBatchByID(b.ID)
	if err != nil {
		t.Fatalf("GetBatchByID() error = %v", err)
	}
	if len(stored.Results) != 3 || stored.Batch.Failed != 1 {
		t.Errorf("stored batch = %+v; want 3 results, 1 failed", stored.Batch)
	}

	sr, err := svc.GetStudentResult(b.ID, "STU002")
	if err != nil {
		t.Fatalf("GetStudentResult() error = %v", err)
	}
	if sr.Outcome.Record.StudentID != "STU002" {
		t.Errorf("result student = %s; want STU002", sr.Outcome.Record.StudentID)
	}
}

func TestProcessEmptyUpload(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Process(batch.Upload{}, "teacher-1")
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Process() error = %v; want validation error", err)
	}
}

func TestSendReports(t *testing.T) {
	svc, _ := newTestService(t)
	emailsvc.ClearSentMessages()

	pb, err := svc.Process(testUpload(), "teacher-1")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	sent, err := svc.SendReports(pb.Batch.ID, true /* includeParents */)
	if err != nil {
		t.Fatalf("SendReports() error = %v", err)
	}
	if sent != 6 {
		t.Errorf("SendReports() = %d; want 6 (3 students + 3 parents)", sent)
	}
	if len(emailsvc.SentMessages) != 6 {
		t.Fatalf("got %d sent messages; want 6", len(emailsvc.SentMessages))
	}

	msg := emailsvc.SentMessages[0]
	if !strings.Contains(msg.Subject, "CSE101") {
		t.Errorf("subject = %q; want the course code in it", msg.Subject)
	}
	if msg.TextContent == "" || !strings.Contains(msg.TextContent, "Grade:") {
		t.Errorf("text content = %q; want a rendered report", msg.TextContent)
	}

	emailsvc.ClearSentMessages()
	sent, err = svc.SendReports(pb.Batch.ID, false)
	if err != nil {
		t.Fatalf("SendReports() error = %v", err)
	}
	if sent != 3 {
		t.Errorf("SendReports() = %d; want 3 without parents", sent)
	}
}
