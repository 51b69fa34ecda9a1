package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/session"
)

const profilePath = "/student/profile"

type profileView struct {
	Identity      session.Identity
	EnrolledOn    string
	PaymentStatus string
	Editing       bool
	Values        coursework.StudentForm
	Errors        map[string]string
}

func newProfileView(id session.Identity) profileView {
	v := profileView{
		Identity:      id,
		EnrolledOn:    "N/A",
		PaymentStatus: coursework.PaymentStatus(id),
	}
	if t, ok := id.EnrolledOn(); ok {
		v.EnrolledOn = t.Format("Jan 2, 2006")
	}
	return v
}

func (s *server) profile(ctx echo.Context) error {
	id := getIdentity(ctx)
	view := newProfileView(id)
	if ctx.QueryParam("edit") != "" {
		view.Editing = true
		view.Values = coursework.PrefillProfile(id)
	}
	return s.render(ctx, http.StatusOK, "profile", "My Profile", view)
}

func (s *server) updateProfile(ctx echo.Context) error {
	sess := getSession(ctx)
	id, _ := sess.Identity()

	view := newProfileView(id)
	view.Editing = true

	if err := ctx.Bind(&view.Values); err != nil {
		return errors.Wrap(err, "binding to StudentForm")
	}
	invalid := func(err error) error {
		vErr, ok := core.AsValidationError(err)
		if !ok {
			return err
		}
		view.Errors = vErr.FieldMap()
		return s.render(ctx, http.StatusUnprocessableEntity, "profile", "My Profile", view)
	}

	fh, err := formFile(ctx, "profileImage")
	if err != nil {
		return err
	}
	if fh != nil {
		if view.Values.ProfileImage, err = coursework.ReadProfileImage(fh); err != nil {
			return invalid(err)
		}
	}
	if err = view.Values.Validate(s.deps.Validate, s.deps.Translator); err != nil {
		return invalid(err)
	}

	updated, err := s.deps.API.UpdateStudent(ctx.Request().Context(), id.ID, view.Values)
	if err == nil {
		err = sess.Update(updated.Identity())
	}
	if err != nil {
		s.deps.Logger.Warn("updating profile: "+err.Error(), err, id)
		flashError(ctx, core.UserMessage(err, "Update failed"))
		return s.render(ctx, http.StatusOK, "profile", "My Profile", view)
	}

	flashSuccess(ctx, "Profile updated successfully!")
	return s.redirect(ctx, http.StatusSeeOther, profilePath)
}
