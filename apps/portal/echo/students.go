package echoportal

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
	apisvc "github.com/katikolakarthik/el-frontend/services/api"
	exportsvc "github.com/katikolakarthik/el-frontend/services/export"
)

const studentsPath = "/admin/students"

type studentsEditor = listeditor.Editor[coursework.Student, coursework.StudentForm]

func (s *server) studentsConfig() listeditor.Config[coursework.Student, coursework.StudentForm] {
	return listeditor.Config[coursework.Student, coursework.StudentForm]{
		Collaborator: apisvc.Students{Client: s.deps.API},
		Validate: func(f coursework.StudentForm) error {
			return f.Validate(s.deps.Validate, s.deps.Translator)
		},
		Prefill: coursework.PrefillStudent,
		Blank:   coursework.BlankStudent,
		Messages: listeditor.Messages{
			LoadFailed:   "Failed to load students",
			Created:      "Student added successfully",
			Updated:      "Student updated successfully",
			Deleted:      "Student deleted successfully",
			SaveFailed:   "Operation failed",
			DeleteFailed: "Delete failed",
		},
		DeferRefresh: true,
	}
}

func (s *server) studentsEditor(ctx echo.Context) *studentsEditor {
	ed, _ := s.students.Get(getIdentity(ctx).ID)
	return ed
}

func (s *server) renderStudents(ctx echo.Context, code int, ed *studentsEditor) error {
	addNotices(ctx, ed.Notices())
	return s.render(ctx, code, "students", "Students", newEditorView(ed))
}

func (s *server) studentsScreen(ctx echo.Context) error {
	ed := s.studentsEditor(ctx)
	if !showEditor(ctx, ed) {
		return s.redirect(ctx, http.StatusFound, studentsPath)
	}
	return s.renderStudents(ctx, http.StatusOK, ed)
}

func (s *server) saveStudent(ctx echo.Context) error {
	ed := s.studentsEditor(ctx)
	if err := openForm(ctx, ed, ctx.Param("id")); err != nil {
		return err
	}

	var values coursework.StudentForm
	if err := ctx.Bind(&values); err != nil {
		return errors.Wrap(err, "binding to StudentForm")
	}
	fh, err := formFile(ctx, "profileImage")
	if err != nil {
		return err
	}
	if fh != nil {
		if values.ProfileImage, err = coursework.ReadProfileImage(fh); err != nil {
			if _, ok := core.AsValidationError(err); !ok {
				return err
			}
			_ = ed.Reject(values, err)
			return s.renderStudents(ctx, http.StatusUnprocessableEntity, ed)
		}
	}

	if err = ed.Submit(ctx.Request().Context(), values); err != nil {
		if _, ok := core.AsValidationError(err); ok {
			return s.renderStudents(ctx, http.StatusUnprocessableEntity, ed)
		}
		return s.renderStudents(ctx, http.StatusOK, ed)
	}
	addNotices(ctx, ed.Notices())
	return s.redirect(ctx, http.StatusSeeOther, studentsPath)
}

func (s *server) deleteStudent(ctx echo.Context) error {
	ed := s.studentsEditor(ctx)
	id := ctx.Param("id")
	confirmed, err := confirmingDelete(ctx, ed, id)
	if err != nil {
		return err
	}
	if !confirmed {
		return s.redirect(ctx, http.StatusSeeOther, confirmDeletePath(studentsPath, id))
	}
	if err = ed.Delete(ctx.Request().Context()); err != nil {
		return s.renderStudents(ctx, http.StatusOK, ed)
	}
	addNotices(ctx, ed.Notices())
	return s.redirect(ctx, http.StatusSeeOther, studentsPath)
}

// exportStudents downloads the freshly fetched roster as a spreadsheet.
func (s *server) exportStudents(ctx echo.Context) error {
	ed := s.studentsEditor(ctx)
	if err := ed.Refresh(ctx.Request().Context()); err != nil {
		addNotices(ctx, ed.Notices())
		return s.redirect(ctx, http.StatusFound, studentsPath+"?close=1")
	}

	var buf bytes.Buffer
	if err := exportsvc.WriteStudents(&buf, ed.Records()); err != nil {
		return errors.Wrap(err, "exporting students")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="students.xlsx"`)
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}
