package spreadsheetsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// TemplateFilename is the suggested download name for the blank workbook.
const TemplateFilename = "student_template.xlsx"

var studentHeader = []interface{}{
	"student_id", "student_name", "email", "parent_email",
	"course_code", "course_name", "semester", "credits",
	"mid_marks", "mid_co_mapping",
	"final_marks", "final_co_mapping",
	"ct_marks", "ct_co_mapping",
	"assignment_marks", "assignment_co_mapping",
	"attendance_marks",
}

var sampleStudents = [][]interface{}{
	{"STU001", "John Doe", "john@email.com", "parent1@email.com",
		"CSE101", "Introduction to Programming", "Fall 2024", 3,
		25, "CO1,CO2", 35, "CO1,CO2,CO3", 12, "CO1", 8, "CO2,CO3", 4},
	{"STU002", "Jane Smith", "jane@email.com", "parent2@email.com",
		"CSE101", "Introduction to Programming", "Fall 2024", 3,
		28, "CO1,CO2", 38, "CO1,CO2,CO3", 14, "CO1", 9, "CO2,CO3", 5},
	{"STU003", "Mike Johnson", "mike@email.com", "parent3@email.com",
		"CSE101", "Introduction to Programming", "Fall 2024", 3,
		22, "CO1,CO2", 30, "CO1,CO2,CO3", 10, "CO1", 7, "CO2,CO3", 3},
}

var sampleMatrix = [][]interface{}{
	{"CO1", "Apply fundamental programming concepts", 1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{"CO2", "Design and implement algorithms", 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{"CO3", "Analyze and debug code", 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{"CO4", "Develop software solutions", 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
}

var poDefinitions = []string{
	"Engineering Knowledge: Apply knowledge of mathematics, science, engineering fundamentals",
	"Problem Analysis: Identify, formulate, research literature, and analyze engineering problems",
	"Design/Development: Design solutions for complex engineering problems and design system components",
	"Conduct Investigations: Use research-based knowledge and research methods for complex problems",
	"Modern Tool Usage: Create, select, and apply appropriate techniques, resources, and modern engineering tools",
	"Engineer and Society: Apply reasoning informed by contextual knowledge to assess societal issues",
	"Environment and Sustainability: Understand the impact of engineering solutions in societal context",
	"Ethics: Apply ethical principles and commit to professional ethics and responsibilities",
	"Individual and Team Work: Function effectively as an individual, and as a member or leader in teams",
	"Communication: Communicate effectively on complex engineering activities with the engineering community",
	"Project Management: Demonstrate knowledge and understanding of engineering and management principles",
	"Life-long Learning: Recognize the need for and have the preparation and ability to engage in independent learning",
}

// BuildTemplate creates the upload workbook pre-filled with sample rows, a
// 12-PO mapping sheet and the standard PO definitions.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSheet(f, SheetStudents, studentHeader, sampleStudents); err != nil {
		return nil, err
	}

	matrixHeader := []interface{}{"Course_Outcome", "Description"}
	for i := 1; i <= 12; i++ {
		matrixHeader = append(matrixHeader, fmt.Sprintf("PO%d", i))
	}
	if err := writeSheet(f, SheetMatrix, matrixHeader, sampleMatrix); err != nil {
		return nil, err
	}

	poRows := make([][]interface{}, len(poDefinitions))
	for i, desc := range poDefinitions {
		poRows[i] = []interface{}{fmt.Sprintf("PO%d", i+1), desc}
	}
	if err := writeSheet(f, SheetPODefs, []interface{}{"Program_Outcome", "Description"}, poRows); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "removing default sheet")
	}
	return f, nil
}

func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return errors.Wrapf(err, "creating sheet %s", name)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return errors.Wrapf(err, "writing %s header", name)
	}
	for i, row := range rows {
		row := row
		if err := f.SetSheetRow(name, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", name, i+2)
		}
	}
	return nil
}

// WriteTemplate builds the template workbook and streams it to w.
func WriteTemplate(w io.Writer) error {
	f, err := BuildTemplate()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
