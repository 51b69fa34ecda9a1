package echoportal

import (
	"context"
	"net/http"
	"net/mail"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/session"
)

const studentAssignmentsPath = "/student/assignments"

type (
	studentAssignmentsView struct {
		Assignments []coursework.Assignment
		Selected    *coursework.Assignment
		Viewer      coursework.Viewer
		Dialog      *submissionDialog
	}

	submissionDialog struct {
		Audit  bool
		Values coursework.SubmissionForm
	}
)

func selectedAssignmentPath(id string) string {
	return studentAssignmentsPath + "?id=" + url.QueryEscape(id)
}

// loadAssignments lists the assignments and picks the one named id, or the first one.
func (s *server) loadAssignments(ctx echo.Context, id string) studentAssignmentsView {
	var view studentAssignmentsView
	list, err := s.deps.API.ListAssignments(ctx.Request().Context())
	if err != nil {
		s.deps.Logger.Warn("listing assignments: "+err.Error(), err, getIdentity(ctx))
		flashError(ctx, "Failed to load assignments")
		return view
	}
	view.Assignments = list
	for i := range list {
		if list[i].ID == id {
			view.Selected = &list[i]
			break
		}
	}
	if view.Selected == nil && len(list) > 0 {
		view.Selected = &list[0]
	}
	return view
}

func (s *server) studentAssignments(ctx echo.Context) error {
	view := s.loadAssignments(ctx, ctx.QueryParam("id"))
	view.Viewer = coursework.ParseViewer(ctx.QueryParam("zoom"), ctx.QueryParam("page"))

	if view.Selected != nil {
		if ctx.QueryParam("download") != "" {
			if !view.Selected.HasPDF() {
				flashError(ctx, "No PDF available for this assignment")
				return s.redirect(ctx, http.StatusFound, selectedAssignmentPath(view.Selected.ID))
			}
			return ctx.Redirect(http.StatusFound, view.Selected.AssignmentPdf)
		}
		if ctx.QueryParam("submit") != "" {
			view.Dialog = &submissionDialog{Audit: ctx.QueryParam("audit") != ""}
		}
	}
	return s.render(ctx, http.StatusOK, "student_assignments", "My Assignments", view)
}

func (s *server) submitAssignment(ctx echo.Context) error {
	id := getIdentity(ctx)
	assignmentID := ctx.Param("id")

	var values coursework.SubmissionForm
	if err := ctx.Bind(&values); err != nil {
		return errors.Wrap(err, "binding to SubmissionForm")
	}
	audit := ctx.FormValue("audit") != ""

	req := values.Request(id.ID, assignmentID)
	if err := s.deps.API.SubmitAssignment(ctx.Request().Context(), req); err != nil {
		flashError(ctx, core.UserMessage(err, "Submission failed"))
		view := s.loadAssignments(ctx, assignmentID)
		view.Viewer = coursework.NewViewer()
		view.Dialog = &submissionDialog{Audit: audit, Values: values}
		return s.render(ctx, http.StatusOK, "student_assignments", "My Assignments", view)
	}

	flashSuccess(ctx, "Assignment submitted successfully!")
	if audit {
		s.sendToAudit(ctx.Request().Context(), id, assignmentID, req.SubmittedAnswers)
		flashSuccess(ctx, "Submission sent to audit")
	}
	return s.redirect(ctx, http.StatusSeeOther, selectedAssignmentPath(assignmentID))
}

// sendToAudit mails the submission to the audit mailbox.
func (s *server) sendToAudit(ctx context.Context, student session.Identity, assignmentID string, answers coursework.SubmittedAnswers) {
	assignment := coursework.Assignment{ID: assignmentID, ModuleName: assignmentID}
	if list, err := s.deps.API.ListAssignments(ctx); err == nil {
		for _, a := range list {
			if a.ID == assignmentID {
				assignment = a
				break
			}
		}
	}

	s.deps.MailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: s.deps.Conf.AuditEmail}},
		Subject:      "Submission for audit: " + assignment.ModuleName,
		TemplateName: "audit_submission",
		TemplateData: coursework.NewAuditReport(student, assignment, answers),
	})
}
