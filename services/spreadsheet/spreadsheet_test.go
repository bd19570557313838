package spreadsheetsvc

import (
	"bytes"
	"testing"
)

func TestTemplateRoundtrip(t *testing.T) {
	var buff bytes.Buffer
	if err := WriteTemplate(&buff); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	up, err := Parse(&buff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(up.RowErrors) != 0 {
		t.Fatalf("Parse() row errors = %+v; want none", up.RowErrors)
	}
	if len(up.Records) != 3 {
		t.Fatalf("got %d records; want 3", len(up.Records))
	}

	rec := up.Records[0]
	if rec.StudentID != "STU001" || rec.Name != "John Doe" || rec.Email != "john@email.com" {
		t.Errorf("first record = %+v; want STU001 / John Doe", rec)
	}
	if rec.Row != 2 {
		t.Errorf("first record row = %d; want 2", rec.Row)
	}
	if rec.Credits != 3 {
		t.Errorf("credits = %v; want 3", rec.Credits)
	}
	if got := rec.Marks["mid"]; got != 25 {
		t.Errorf("mid marks = %v; want 25", got)
	}
	if got := rec.Marks["attendance"]; got != 4 {
		t.Errorf("attendance marks = %v; want 4", got)
	}
	wantTags := []string{"CO1", "CO2", "CO3"}
	if got := rec.COTags["final"]; len(got) != 3 || got[0] != wantTags[0] || got[2] != wantTags[2] {
		t.Errorf("final CO tags = %v; want %v", got, wantTags)
	}
	if got := rec.COTags["attendance"]; got != nil {
		t.Errorf("attendance CO tags = %v; want none", got)
	}

	if len(up.Matrix.COs) != 4 || len(up.Matrix.POs) != 12 {
		t.Fatalf("matrix = %d COs x %d POs; want 4 x 12", len(up.Matrix.COs), len(up.Matrix.POs))
	}
	if err := up.Matrix.Validate(); err != nil {
		t.Errorf("Matrix.Validate() error = %v", err)
	}
	co1 := up.Matrix.COs[0]
	if co1.ID != "CO1" || !co1.Maps[0] || co1.Maps[1] || !co1.Maps[2] {
		t.Errorf("CO1 = %+v; want maps PO1, PO3", co1)
	}

	if len(up.PODescriptions) != 12 {
		t.Errorf("got %d PO descriptions; want 12", len(up.PODescriptions))
	}
	if d := up.PODescriptions["PO1"]; d == "" {
		t.Error("PO1 description is empty")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse(bytes.NewBufferString("not a workbook")); err == nil {
		t.Error("Parse() = nil error; want workbook error")
	}
}
