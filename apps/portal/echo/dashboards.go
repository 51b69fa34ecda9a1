package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/session"
)

func (s *server) adminDashboard(ctx echo.Context) error {
	var (
		students    []coursework.Student
		assignments []coursework.Assignment
	)
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() (err error) {
		students, err = s.deps.API.StudentSummaries(gctx)
		return err
	})
	g.Go(func() (err error) {
		assignments, err = s.deps.API.ListAssignments(gctx)
		return err
	})

	var stats coursework.AdminStats
	if err := g.Wait(); err != nil {
		s.deps.Logger.Warn("loading admin dashboard: "+err.Error(), err, getIdentity(ctx))
		flashError(ctx, "Failed to load dashboard data")
	} else {
		stats = coursework.ComputeAdminStats(students, assignments)
	}
	return s.render(ctx, http.StatusOK, "admin_dashboard", "Dashboard", stats)
}

type studentDashboardView struct {
	coursework.StudentDashboard
	Identity      session.Identity
	EnrolledOn    string
	PaymentStatus string
}

func (s *server) studentDashboard(ctx echo.Context) error {
	id := getIdentity(ctx)

	var (
		progress    coursework.StudentProgress
		submissions []coursework.Submission
	)
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() (err error) {
		progress, err = s.deps.API.StudentProgress(gctx, id.ID)
		return err
	})
	g.Go(func() (err error) {
		submissions, err = s.deps.API.Submissions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.deps.Logger.Warn("loading student dashboard: "+err.Error(), err, id)
		flashError(ctx, "Failed to load dashboard data")
		progress, submissions = coursework.StudentProgress{}, nil
	}

	view := studentDashboardView{
		StudentDashboard: coursework.NewStudentDashboard(progress, submissions),
		Identity:         id,
		EnrolledOn:       "N/A",
		PaymentStatus:    coursework.PaymentStatus(id),
	}
	if t, ok := id.EnrolledOn(); ok {
		view.EnrolledOn = t.Format("Jan 2, 2006")
	}
	return s.render(ctx, http.StatusOK, "student_dashboard", "Dashboard", view)
}
