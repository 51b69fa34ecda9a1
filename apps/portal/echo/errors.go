package echoportal

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Unknown pages requested with GET redirect to the login screen.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = origErr.Error()
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, message)}
			if id, ok := getSession(ctx).Identity(); ok {
				args = append(args, id)
			}
			logger.Error(message, args...)
		}

		if ctx.Response().Committed {
			return
		}

		method := ctx.Request().Method
		if code == http.StatusNotFound && (method == http.MethodGet || method == http.MethodHead) {
			err = ctx.Redirect(http.StatusFound, "/login")
		} else if method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			if ctx.Echo().Debug && code == http.StatusInternalServerError {
				message = err.Error()
			}
			err = ctx.String(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
