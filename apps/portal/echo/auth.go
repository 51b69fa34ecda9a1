package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
)

type loginForm struct {
	Name     string `form:"name" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type loginView struct {
	Name   string
	Errors map[string]string
}

func (s *server) loginPage(ctx echo.Context) error {
	if id, ok := getSession(ctx).Identity(); ok {
		return s.redirect(ctx, http.StatusFound, id.Role.Landing())
	}
	return s.renderBare(ctx, http.StatusOK, "login", "Login", loginView{})
}

func (s *server) login(ctx echo.Context) error {
	var data loginForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginForm")
	}
	data.Name = core.CleanString(data.Name)

	if err := core.ValidateStruct(s.deps.Validate, s.deps.Translator, data, nil); err != nil {
		view := loginView{Name: data.Name}
		if vErr, ok := core.AsValidationError(err); ok {
			view.Errors = vErr.FieldMap()
		}
		return s.renderBare(ctx, http.StatusUnprocessableEntity, "login", "Login", view)
	}

	id, err := getSession(ctx).Login(ctx.Request().Context(), data.Name, data.Password)
	if err != nil {
		s.deps.Logger.Info("login failed", map[string]interface{}{"name": data.Name, "error": err.Error()})
		flashError(ctx, core.UserMessage(err, "Login failed"))
		return s.renderBare(ctx, http.StatusUnauthorized, "login", "Login", loginView{Name: data.Name})
	}

	flashSuccess(ctx, "Login successful!")
	return s.redirect(ctx, http.StatusSeeOther, id.Role.Landing())
}

func (s *server) logout(ctx echo.Context) error {
	sess := getSession(ctx)
	if id, ok := sess.Identity(); ok {
		s.students.Forget(id.ID)
		s.assignments.Forget(id.ID)
	}
	if err := sess.Logout(); err != nil {
		return errors.Wrap(err, "logging out")
	}
	flashSuccess(ctx, "Logged out successfully")
	return s.redirect(ctx, http.StatusSeeOther, "/login")
}
