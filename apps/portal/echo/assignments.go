package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
	apisvc "github.com/katikolakarthik/el-frontend/services/api"
)

const assignmentsPath = "/admin/assignments"

type assignmentsEditor = listeditor.Editor[coursework.Assignment, coursework.AssignmentForm]

func (s *server) assignmentsConfig() listeditor.Config[coursework.Assignment, coursework.AssignmentForm] {
	return listeditor.Config[coursework.Assignment, coursework.AssignmentForm]{
		Collaborator: apisvc.Assignments{Client: s.deps.API},
		Validate: func(f coursework.AssignmentForm) error {
			return f.Validate(s.deps.Validate, s.deps.Translator)
		},
		Prefill: coursework.PrefillAssignment,
		Blank:   coursework.BlankAssignment,
		Messages: listeditor.Messages{
			LoadFailed:   "Failed to load assignments",
			Created:      "Assignment added successfully",
			Updated:      "Assignment updated successfully",
			Deleted:      "Assignment deleted successfully",
			SaveFailed:   "Operation failed",
			DeleteFailed: "Delete failed",
		},
		DeferRefresh: true,
	}
}

func (s *server) assignmentsEditor(ctx echo.Context) *assignmentsEditor {
	ed, _ := s.assignments.Get(getIdentity(ctx).ID)
	return ed
}

func (s *server) renderAssignments(ctx echo.Context, code int, ed *assignmentsEditor) error {
	addNotices(ctx, ed.Notices())
	return s.render(ctx, code, "assignments", "Assignments", newEditorView(ed))
}

func (s *server) assignmentsScreen(ctx echo.Context) error {
	ed := s.assignmentsEditor(ctx)
	if !showEditor(ctx, ed) {
		return s.redirect(ctx, http.StatusFound, assignmentsPath)
	}
	return s.renderAssignments(ctx, http.StatusOK, ed)
}

func (s *server) saveAssignment(ctx echo.Context) error {
	ed := s.assignmentsEditor(ctx)
	if err := openForm(ctx, ed, ctx.Param("id")); err != nil {
		return err
	}

	var values coursework.AssignmentForm
	if err := ctx.Bind(&values); err != nil {
		return errors.Wrap(err, "binding to AssignmentForm")
	}
	fh, err := formFile(ctx, "assignmentPdf")
	if err != nil {
		return err
	}
	if fh != nil {
		if values.AssignmentPdf, err = coursework.ReadPDF(fh); err != nil {
			if _, ok := core.AsValidationError(err); !ok {
				return err
			}
			_ = ed.Reject(values, err)
			return s.renderAssignments(ctx, http.StatusUnprocessableEntity, ed)
		}
	}

	if err = ed.Submit(ctx.Request().Context(), values); err != nil {
		if _, ok := core.AsValidationError(err); ok {
			return s.renderAssignments(ctx, http.StatusUnprocessableEntity, ed)
		}
		return s.renderAssignments(ctx, http.StatusOK, ed)
	}
	addNotices(ctx, ed.Notices())
	return s.redirect(ctx, http.StatusSeeOther, assignmentsPath)
}

func (s *server) deleteAssignment(ctx echo.Context) error {
	ed := s.assignmentsEditor(ctx)
	id := ctx.Param("id")
	confirmed, err := confirmingDelete(ctx, ed, id)
	if err != nil {
		return err
	}
	if !confirmed {
		return s.redirect(ctx, http.StatusSeeOther, confirmDeletePath(assignmentsPath, id))
	}
	if err = ed.Delete(ctx.Request().Context()); err != nil {
		return s.renderAssignments(ctx, http.StatusOK, ed)
	}
	addNotices(ctx, ed.Notices())
	return s.redirect(ctx, http.StatusSeeOther, assignmentsPath)
}
