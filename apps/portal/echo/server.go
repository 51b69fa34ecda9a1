package echoportal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
	"github.com/katikolakarthik/el-frontend/core/session"
	appfs "github.com/katikolakarthik/el-frontend/fs"
	apisvc "github.com/katikolakarthik/el-frontend/services/api"
)

const editorTTL = 30 * time.Minute

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		DisableCSRF    bool
	}

	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		API        *apisvc.Client
		Sessions   *session.Store
		MailSvc    core.EmailService
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     Options
		deps     Deps
		app      *echo.Echo
		flashes  *flashCodec
		errors   chan error
		shutdown chan os.Signal

		students    *listeditor.Registry[coursework.Student, coursework.StudentForm]
		assignments *listeditor.Registry[coursework.Assignment, coursework.AssignmentForm]
	}
)

var _ Server = (*server)(nil)

func NewServer(opts Options, deps Deps) (Server, error) {
	tmpl, err := newRenderer(appfs.Portal())
	if err != nil {
		return nil, errors.Wrap(err, "parsing portal templates")
	}

	s := &server{
		opts:     opts,
		deps:     deps,
		app:      echo.New(),
		flashes:  newFlashCodec([]byte(deps.Conf.SecretKey)),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.students = listeditor.NewRegistry(s.studentsConfig(), editorTTL)
	s.assignments = listeditor.NewRegistry(s.assignmentsConfig(), editorTTL)

	s.app.Renderer = tmpl
	s.setup()
	return s, nil
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	s.app.Logger.SetLevel(log.INFO)
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(
		requestMetrics,
		middleware.Secure(),
		middleware.BodyLimit("12M"),
		middleware.CSRFWithConfig(middleware.CSRFConfig{
			Skipper:        func(echo.Context) bool { return s.opts.DisableCSRF },
			TokenLookup:    "form:" + csrfField,
			ContextKey:     csrfContextKey,
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   conf.Session.Secure,
			CookieSameSite: http.SameSiteLaxMode,
		}),
		s.flashMiddleware,
		s.sessionMiddleware,
	)

	s.app.GET("/", redirectTo("/login"))
	s.app.GET("/login", s.loginPage)
	s.app.POST("/login", s.login)
	s.app.POST("/logout", s.logout)

	admin := s.app.Group("/admin", s.guard(session.Admin), s.boundary)
	admin.GET("", redirectTo(session.Admin.Landing()))
	admin.GET("/dashboard", s.adminDashboard)
	admin.GET("/students", s.studentsScreen)
	admin.GET("/students/export.xlsx", s.exportStudents)
	admin.POST("/students", s.saveStudent)
	admin.POST("/students/:id", s.saveStudent)
	admin.POST("/students/:id/delete", s.deleteStudent)
	admin.GET("/assignments", s.assignmentsScreen)
	admin.POST("/assignments", s.saveAssignment)
	admin.POST("/assignments/:id", s.saveAssignment)
	admin.POST("/assignments/:id/delete", s.deleteAssignment)

	student := s.app.Group("/student", s.guard(session.Student), s.boundary)
	student.GET("", redirectTo(session.Student.Landing()))
	student.GET("/dashboard", s.studentDashboard)
	student.GET("/assignments", s.studentAssignments)
	student.POST("/assignments/:id/submit", s.submitAssignment)
	student.GET("/profile", s.profile)
	student.POST("/profile", s.updateProfile)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func redirectTo(location string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.Redirect(http.StatusFound, location)
	}
}
