package echoportal

import (
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core/listeditor"
)

// editorView is what a list screen renders: the cached records and the open dialog, if any.
type editorView[R listeditor.Record, F any] struct {
	Loaded   bool
	Records  []R
	Form     *listeditor.Form[F]
	Deleting *R
}

func newEditorView[R listeditor.Record, F any](ed *listeditor.Editor[R, F]) editorView[R, F] {
	v := editorView[R, F]{Loaded: ed.Loaded(), Records: ed.Records()}
	if f, ok := ed.Form(); ok {
		v.Form = &f
	}
	if rec, ok := ed.DeleteTarget(); ok {
		v.Deleting = &rec
	}
	return v
}

// showEditor applies the query of a list screen GET.
// A plain GET mounts the screen: dialogs are closed and the list is fetched again.
// ?new=1, ?edit=ID and ?delete=ID open a dialog over the cached list; ?close=1 closes it.
// It reports false when the record named by the query is not in the list.
func showEditor[R listeditor.Record, F any](ctx echo.Context, ed *listeditor.Editor[R, F]) bool {
	q := ctx.QueryParams()
	newForm, editID, deleteID := q.Get("new") != "", q.Get("edit"), q.Get("delete")
	dialog := newForm || editID != "" || deleteID != "" || q.Has("close")

	ed.Reset()
	if !dialog || !ed.Loaded() {
		_ = ed.Refresh(ctx.Request().Context()) // failures are queued as notices
	}

	switch {
	case newForm:
		_ = ed.OpenCreate()
	case editID != "":
		rec, ok := ed.Find(editID)
		if !ok {
			return false
		}
		_ = ed.OpenEdit(rec)
	case deleteID != "":
		rec, ok := ed.Find(deleteID)
		if !ok {
			return false
		}
		_ = ed.ConfirmDelete(rec)
	}
	return true
}

// openForm makes sure the form dialog for id ("" to create) is the one open.
func openForm[R listeditor.Record, F any](ctx echo.Context, ed *listeditor.Editor[R, F], id string) error {
	if !ed.Loaded() {
		_ = ed.Refresh(ctx.Request().Context())
	}
	if f, ok := ed.Form(); ok && f.TargetID == id {
		return nil
	}
	ed.Reset()
	if id == "" {
		return ed.OpenCreate()
	}
	rec, ok := ed.Find(id)
	if !ok {
		return errHttpNotFound
	}
	return ed.OpenEdit(rec)
}

// confirmingDelete reports whether the delete confirmation for id is the one open.
// It never opens one itself: a delete without a prior confirmation is sent back to it.
func confirmingDelete[R listeditor.Record, F any](ctx echo.Context, ed *listeditor.Editor[R, F], id string) (bool, error) {
	if rec, ok := ed.DeleteTarget(); ok && rec.RecordID() == id {
		return true, nil
	}
	if !ed.Loaded() {
		_ = ed.Refresh(ctx.Request().Context())
	}
	if _, ok := ed.Find(id); !ok {
		return false, errHttpNotFound
	}
	return false, nil
}

func confirmDeletePath(screen, id string) string {
	return screen + "?delete=" + url.QueryEscape(id)
}

// formFile returns the uploaded file of field, or nil when none was sent.
func formFile(ctx echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(field)
	switch {
	case err == nil:
		if fh.Filename == "" && fh.Size == 0 {
			return nil, nil
		}
		return fh, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, errors.Wrapf(err, "reading %s", field)
	}
}
