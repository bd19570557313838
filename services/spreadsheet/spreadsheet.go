// Package spreadsheetsvc reads and writes the marks workbook format: a
// Student_Data sheet with per-component marks and CO tags, a CO_PO_Mapping
// sheet and a PO_Definitions sheet.
package spreadsheetsvc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/FAHMIDA-78/copo/core"
	"github.com/FAHMIDA-78/copo/core/attain"
	"github.com/FAHMIDA-78/copo/core/batch"
)

const (
	SheetStudents = "Student_Data"
	SheetMatrix   = "CO_PO_Mapping"
	SheetPODefs   = "PO_Definitions"

	// ContentType is the MIME type of .xlsx workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Parse reads a marks workbook into an Upload. Rows that cannot be read
// become row errors; a missing or unreadable sheet fails the whole parse.
func Parse(r io.Reader) (batch.Upload, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return batch.Upload{}, core.NewValidationError(
			errors.Wrap(err, "opening workbook"),
			core.FieldError{Field: "file", Error: "not a readable .xlsx workbook"},
		)
	}
	defer f.Close()

	var up batch.Upload
	if up.Records, up.RowErrors, err = parseStudents(f); err != nil {
		return batch.Upload{}, err
	}
	if up.Matrix, err = parseMatrix(f); err != nil {
		return batch.Upload{}, err
	}
	if up.PODescriptions, err = parsePODefinitions(f); err != nil {
		return batch.Upload{}, err
	}
	return up, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.NewValidationError(
			errors.Wrapf(err, "reading sheet %s", sheet),
			core.FieldError{Field: "file", Error: fmt.Sprintf("missing sheet %q", sheet)},
		)
	}
	if len(rows) < 2 {
		return nil, core.NewValidationError(
			errors.Errorf("sheet %s has no data rows", sheet),
			core.FieldError{Field: "file", Error: fmt.Sprintf("sheet %q has no data rows", sheet)},
		)
	}
	return rows, nil
}

// headerIndex maps normalized column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if h = core.CleanString(h, true /* lower */); h != "" {
			idx[h] = i
		}
	}
	return idx
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return core.CleanString(row[i])
}

func parseStudents(f *excelize.File) ([]attain.StudentRecord, []attain.RowError, error) {
	rows, err := sheetRows(f, SheetStudents)
	if err != nil {
		return nil, nil, err
	}
	idx := headerIndex(rows[0])

	var (
		records []attain.StudentRecord
		rowErrs []attain.RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		if isBlank(row) {
			continue
		}
		rec, err := parseStudentRow(row, idx, rowNum)
		if err != nil {
			rowErrs = append(rowErrs, attain.RowError{
				Row:       rowNum,
				StudentID: cell(row, idx, "student_id"),
				Message:   err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, rowErrs, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseStudentRow(row []string, idx map[string]int, rowNum int) (attain.StudentRecord, error) {
	rec := attain.StudentRecord{
		Row:         rowNum,
		StudentID:   cell(row, idx, "student_id"),
		Name:        cell(row, idx, "student_name"),
		Email:       core.CleanString(cell(row, idx, "email"), true /* lower */),
		ParentEmail: core.CleanString(cell(row, idx, "parent_email"), true /* lower */),
		CourseCode:  cell(row, idx, "course_code"),
		CourseName:  cell(row, idx, "course_name"),
		Semester:    cell(row, idx, "semester"),
		Marks:       make(map[string]float64),
		COTags:      make(map[string][]string),
	}

	if raw := cell(row, idx, "credits"); raw != "" {
		credits, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return attain.StudentRecord{}, errors.Errorf("credits: %q is not a number", raw)
		}
		rec.Credits = credits
	}

	for _, c := range attain.DefaultComponents {
		raw := cell(row, idx, c.Name+"_marks")
		if raw == "" {
			continue // the engine reports the missing component
		}
		mark, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return attain.StudentRecord{}, errors.Errorf("%s_marks: %q is not a number", c.Name, raw)
		}
		rec.Marks[c.Name] = mark

		if tags := cell(row, idx, c.Name+"_co_mapping"); tags != "" {
			rec.COTags[c.Name] = splitTags(tags)
		}
	}
	return rec, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = core.CleanString(t); t != "" {
			tags = append(tags, strings.ToUpper(t))
		}
	}
	return tags
}

func parseMatrix(f *excelize.File) (attain.COPOMatrix, error) {
	rows, err := sheetRows(f, SheetMatrix)
	if err != nil {
		return attain.COPOMatrix{}, err
	}

	var (
		m      attain.COPOMatrix
		poCols []int
	)
	// PO columns are whatever PO-prefixed headers the sheet declares, in order
	for i, h := range rows[0] {
		h = core.CleanString(h)
		if strings.HasPrefix(strings.ToUpper(h), "PO") {
			m.POs = append(m.POs, strings.ToUpper(h))
			poCols = append(poCols, i)
		}
	}
	idx := headerIndex(rows[0])

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		co := attain.CourseOutcome{
			ID:          strings.ToUpper(cell(row, idx, "course_outcome")),
			Description: cell(row, idx, "description"),
			Maps:        make([]bool, len(poCols)),
		}
		for j, col := range poCols {
			if col < len(row) {
				co.Maps[j] = strings.TrimSpace(row[col]) == "1"
			}
		}
		m.COs = append(m.COs, co)
	}
	return m, nil
}

func parsePODefinitions(f *excelize.File) (map[string]string, error) {
	rows, err := f.GetRows(SheetPODefs)
	if err != nil || len(rows) < 2 {
		return nil, nil // the sheet is optional
	}
	idx := headerIndex(rows[0])

	defs := make(map[string]string)
	for _, row := range rows[1:] {
		po := strings.ToUpper(cell(row, idx, "program_outcome"))
		if po == "" {
			continue
		}
		defs[po] = cell(row, idx, "description")
	}
	return defs, nil
}
