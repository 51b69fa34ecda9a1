package echoportal

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"

	"github.com/katikolakarthik/el-frontend/core/listeditor"
	"github.com/katikolakarthik/el-frontend/core/session"
)

const (
	layoutFile     = "layout.gohtml"
	csrfField      = "_csrf"
	csrfContextKey = "csrf"
)

type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

// newRenderer parses every page of fsys together with the layout.
func newRenderer(fsys fs.FS) (*renderer, error) {
	files, err := fs.Glob(fsys, "*.gohtml")
	if err != nil {
		return nil, err
	}
	r := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(f, ".gohtml")
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(fsys, layoutFile, f)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", f)
		}
		r.pages[name] = tmpl.Option("missingkey=error")
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	return errors.Wrapf(tmpl.ExecuteTemplate(w, "layout", data), "rendering %s", name)
}

var markdown = goldmark.New()

var funcMap = template.FuncMap{
	// markdown renders notes; raw HTML in the source is omitted.
	"markdown": func(src string) (template.HTML, error) {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(src), &buf); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil // nolint:gosec
	},
	"join": listeditor.JoinList,
	"add":  func(a, b int) int { return a + b },
}

type (
	// page is what the layout receives. Shell is nil on screens shown without navigation.
	page struct {
		AppName string
		Title   string
		CSRF    string
		Shell   *shell
		Flashes []flash
		Data    interface{}
	}

	shell struct {
		Identity  session.Identity
		RoleTitle string
		Menu      []menuLink
	}

	menuLink struct {
		Label  string
		Path   string
		Active bool
	}
)

func newShell(id session.Identity, path string) *shell {
	items := id.Role.Menu()
	links := make([]menuLink, 0, len(items))
	for _, it := range items {
		links = append(links, menuLink{
			Label:  it.Label,
			Path:   it.Path,
			Active: path == it.Path || strings.HasPrefix(path, it.Path+"/"),
		})
	}
	return &shell{Identity: id, RoleTitle: id.Role.Title(), Menu: links}
}

func (s *server) newPage(ctx echo.Context, title string, data interface{}) page {
	csrf, _ := ctx.Get(csrfContextKey).(string)
	return page{
		AppName: s.deps.Conf.AppName,
		Title:   title,
		CSRF:    csrf,
		Data:    data,
	}
}

// render shows a screen inside the shell of the logged in user.
func (s *server) render(ctx echo.Context, code int, name, title string, data interface{}) error {
	p := s.newPage(ctx, title, data)
	if id, ok := getSession(ctx).Identity(); ok {
		p.Shell = newShell(id, ctx.Request().URL.Path)
	}
	p.Flashes = takeFlashes(ctx)
	return ctx.Render(code, name, p)
}

// renderBare shows a screen without navigation.
func (s *server) renderBare(ctx echo.Context, code int, name, title string, data interface{}) error {
	p := s.newPage(ctx, title, data)
	p.Flashes = takeFlashes(ctx)
	return ctx.Render(code, name, p)
}
