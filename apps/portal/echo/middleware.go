package echoportal

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core/session"
)

const ctxSessionKey = "session"

// sessionMiddleware restores the durable session of the request before any handler runs.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Set(ctxSessionKey, s.deps.Sessions.Restore(ctx.Response(), ctx.Request()))
		return next(ctx)
	}
}

// getSession returns nil while the session has not been restored.
func getSession(ctx echo.Context) *session.Session {
	sess, _ := ctx.Get(ctxSessionKey).(*session.Session)
	return sess
}

func getIdentity(ctx echo.Context) session.Identity {
	id, _ := getSession(ctx).Identity()
	return id
}

// guard lets the request through only for the permitted roles; a denied handler never runs.
func (s *server) guard(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			d := session.Decide(session.StateOf(getSession(ctx)), roles...)
			switch d.Action {
			case session.Render:
				return next(ctx)
			case session.Placeholder:
				return s.renderBare(ctx, http.StatusOK, "loading", "Loading…", nil)
			default:
				return s.redirect(ctx, http.StatusFound, d.Location)
			}
		}
	}
}

type boundaryView struct {
	Reload string
	Retry  string
}

// boundary turns a failing screen into a recovery panel inside the shell.
// HTTP errors (redirects, not found, CSRF) are passed on untouched.
func (s *server) boundary(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				rErr, ok := r.(error)
				if !ok {
					rErr = fmt.Errorf("%v", r)
				}
				err = s.recoverScreen(ctx, errors.WithStack(rErr))
			}
		}()

		err = next(ctx)
		if err == nil {
			return nil
		}
		if _, ok := errors.Cause(err).(*echo.HTTPError); ok {
			return err
		}
		return s.recoverScreen(ctx, err)
	}
}

func (s *server) recoverScreen(ctx echo.Context, cause error) error {
	if ctx.Response().Committed {
		return cause
	}

	args := []interface{}{cause}
	id, ok := getSession(ctx).Identity()
	if ok {
		args = append(args, id)
	}
	s.deps.Logger.Error(fmt.Sprintf("screen %s failed: %v", ctx.Request().URL.Path, cause), args...)

	view := boundaryView{Reload: "/login", Retry: ctx.Request().URL.RequestURI()}
	if ok {
		view.Reload = id.Role.Landing()
	}
	if ctx.Request().Method != http.MethodGet {
		view.Retry = screenPath(ctx.Request().URL.Path)
	}
	if err := s.render(ctx, http.StatusInternalServerError, "boundary", "Something went wrong", view); err != nil {
		return errors.Wrap(cause, err.Error())
	}
	return nil
}

// screenPath is the screen a path belongs to: "/admin/students/s1/delete" -> "/admin/students".
func screenPath(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) < 2 {
		return "/" + parts[0]
	}
	return "/" + parts[0] + "/" + parts[1]
}
