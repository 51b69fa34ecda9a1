// Package exportsvc writes spreadsheet exports of the students roster.
package exportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/katikolakarthik/el-frontend/core/coursework"
)

const (
	StudentsSheet = "Students"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var studentsHeader = []interface{}{
	"Name", "Email", "Course", "Paid", "Remaining", "Enrolled", "Submissions", "Average progress",
}

// WriteStudents writes one row per student, below a bold header row, as an xlsx workbook.
func WriteStudents(w io.Writer, students []coursework.Student) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "closing workbook")
		}
	}()

	if err = f.SetSheetName("Sheet1", StudentsSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = f.SetSheetRow(StudentsSheet, "A1", &studentsHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err = f.SetRowStyle(StudentsSheet, 1, 1, bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		row := []interface{}{
			s.Name, s.Email, s.CourseName, s.Paid(), s.Remaining(), s.EnrolledOn(), s.SubmissionCount, s.AverageProgress,
		}
		if err = f.SetSheetRow(StudentsSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	if err = f.SetColWidth(StudentsSheet, "A", "C", 24); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	if _, err = f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
