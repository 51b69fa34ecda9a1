// Package listeditor implements the list/create/edit/delete cycle shared by the management screens.
//
// An Editor caches one collection fetched in full from a Collaborator and carries the state of the
// screen's two dialogs: the form dialog (create or edit) and the delete confirmation. Mutations are
// sent wholesale and followed by a full refresh; cached records are never patched in place.
package listeditor

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/katikolakarthik/el-frontend/core"
)

var (
	ErrDialogOpen     = errors.New("another dialog is open")
	ErrNoForm         = errors.New("no form dialog open")
	ErrNoDeleteTarget = errors.New("no delete confirmation open")
	ErrStale          = errors.New("stale response discarded")
)

type (
	// Record is a server-owned entity.
	Record interface {
		RecordID() string
	}

	// Collaborator performs the remote calls of one entity type.
	Collaborator[R Record, F any] interface {
		List(ctx context.Context) ([]R, error)
		Create(ctx context.Context, values F) error
		Update(ctx context.Context, id string, values F) error
		Delete(ctx context.Context, id string) error
	}

	// Messages are the notification texts of one entity type.
	// SaveFailed and DeleteFailed are fallbacks for errors without a user message.
	Messages struct {
		LoadFailed   string
		Created      string
		Updated      string
		Deleted      string
		SaveFailed   string
		DeleteFailed string
	}

	Config[R Record, F any] struct {
		Collaborator Collaborator[R, F]
		// Validate runs before any remote call; field problems come back as *core.ValidationError.
		Validate func(values F) error
		Prefill  func(rec R) F
		Blank    func() F
		Messages Messages
		// DeferRefresh leaves the refresh following a successful mutation to the caller,
		// which is expected to call Refresh when it next shows the list.
		DeferRefresh bool
	}

	// Form is the state of the form dialog. TargetID is empty when creating.
	Form[F any] struct {
		TargetID string
		Values   F
		Errors   map[string]string
	}
)

func (f Form[F]) Editing() bool { return f.TargetID != "" }

type NoticeKind uint8

const (
	Success NoticeKind = iota
	Failure
)

func (k NoticeKind) String() string {
	if k == Failure {
		return "error"
	}
	return "success"
}

// Notice is a transient notification produced by an editor operation.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Editor is one screen instance. It is safe for concurrent use.
type Editor[R Record, F any] struct {
	cfg Config[R, F]

	mu       sync.Mutex
	records  []R
	loaded   bool
	issued   uint64 // last refresh issued
	applied  uint64 // last refresh whose response was applied
	form     *Form[F]
	deleting *R
	notices  []Notice

	inflight singleflight.Group
}

func New[R Record, F any](cfg Config[R, F]) *Editor[R, F] {
	return &Editor[R, F]{cfg: cfg}
}

func (e *Editor[R, F]) notify(kind NoticeKind, msg string) {
	if msg != "" {
		e.notices = append(e.notices, Notice{Kind: kind, Message: msg})
	}
}

// Refresh fetches the whole collection and replaces the cache with it.
// On failure the cache is emptied and a single failure notice is queued.
// A response older than one already applied is dropped and ErrStale returned.
func (e *Editor[R, F]) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.issued++
	seq := e.issued
	e.mu.Unlock()

	recs, err := e.cfg.Collaborator.List(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq < e.applied {
		return ErrStale
	}
	e.applied = seq
	e.loaded = true
	if err != nil {
		e.records = nil
		e.notify(Failure, e.cfg.Messages.LoadFailed)
		return errors.Wrap(err, "listing records")
	}
	e.records = append(make([]R, 0, len(recs)), recs...)
	return nil
}

// Loaded reports whether a refresh has completed at least once.
func (e *Editor[R, F]) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Records returns a copy of the cached collection.
func (e *Editor[R, F]) Records() []R {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(make([]R, 0, len(e.records)), e.records...)
}

// Find looks a record up in the cache.
func (e *Editor[R, F]) Find(id string) (R, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range e.records {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero R
	return zero, false
}

// OpenCreate opens the form dialog with blank values.
func (e *Editor[R, F]) OpenCreate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleting != nil {
		return ErrDialogOpen
	}
	e.form = &Form[F]{Values: e.cfg.Blank()}
	return nil
}

// OpenEdit opens the form dialog pre-filled from rec.
func (e *Editor[R, F]) OpenEdit(rec R) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleting != nil {
		return ErrDialogOpen
	}
	e.form = &Form[F]{TargetID: rec.RecordID(), Values: e.cfg.Prefill(rec)}
	return nil
}

func (e *Editor[R, F]) CloseForm() {
	e.mu.Lock()
	e.form = nil
	e.mu.Unlock()
}

// Form returns a copy of the open form dialog, if any.
func (e *Editor[R, F]) Form() (Form[F], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.form == nil {
		return Form[F]{}, false
	}
	f := *e.form
	if f.Errors != nil {
		errs := make(map[string]string, len(f.Errors))
		for k, v := range f.Errors {
			errs[k] = v
		}
		f.Errors = errs
	}
	return f, true
}

// Submit validates values, then creates or updates depending on the open form.
// Field errors stay on the form and no remote call is made. A remote failure keeps the
// form open and queues the server's message (or the fallback). Submissions of identical
// values racing for the same target share one remote call; differing values are sent separately.
// The shared call is not cancelled when one of the waiting requests goes away.
func (e *Editor[R, F]) Submit(ctx context.Context, values F) error {
	e.mu.Lock()
	if e.form == nil {
		e.mu.Unlock()
		return ErrNoForm
	}
	target := e.form.TargetID
	e.mu.Unlock()

	if err := e.cfg.Validate(values); err != nil {
		e.reject(target, values, err)
		return err
	}

	key := "create:" + digest(values)
	if target != "" {
		key = "update:" + target + ":" + digest(values)
	}
	ctx = context.WithoutCancel(ctx)
	_, err, _ := e.inflight.Do(key, func() (interface{}, error) {
		var err error
		if target == "" {
			err = e.cfg.Collaborator.Create(ctx, values)
		} else {
			err = e.cfg.Collaborator.Update(ctx, target, values)
		}

		e.mu.Lock()
		if err != nil {
			e.notify(Failure, core.UserMessage(err, e.cfg.Messages.SaveFailed))
			if e.form != nil && e.form.TargetID == target {
				e.form.Values = values
				e.form.Errors = nil
			}
			e.mu.Unlock()
			return nil, errors.Wrap(err, "saving record")
		}
		if e.form != nil && e.form.TargetID == target {
			e.form = nil
		}
		if target == "" {
			e.notify(Success, e.cfg.Messages.Created)
		} else {
			e.notify(Success, e.cfg.Messages.Updated)
		}
		e.mu.Unlock()

		if !e.cfg.DeferRefresh {
			_ = e.Refresh(ctx) // failures are queued as notices
		}
		return nil, nil
	})
	return err
}

// Reject keeps values on the open form along with the field errors carried by err.
// It is meant for problems found outside Validate, e.g. an unreadable attachment.
func (e *Editor[R, F]) Reject(values F, err error) error {
	e.mu.Lock()
	if e.form == nil {
		e.mu.Unlock()
		return ErrNoForm
	}
	target := e.form.TargetID
	e.mu.Unlock()

	e.reject(target, values, err)
	return err
}

func (e *Editor[R, F]) reject(target string, values F, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.form == nil || e.form.TargetID != target {
		return
	}
	e.form.Values = values
	if vErr, ok := core.AsValidationError(err); ok {
		e.form.Errors = vErr.FieldMap()
	}
}

// ConfirmDelete opens the delete confirmation for rec. Nothing is deleted yet.
func (e *Editor[R, F]) ConfirmDelete(rec R) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.form != nil {
		return ErrDialogOpen
	}
	e.deleting = &rec
	return nil
}

func (e *Editor[R, F]) CancelDelete() {
	e.mu.Lock()
	e.deleting = nil
	e.mu.Unlock()
}

// DeleteTarget returns the record awaiting confirmation, if any.
func (e *Editor[R, F]) DeleteTarget() (R, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleting == nil {
		var zero R
		return zero, false
	}
	return *e.deleting, true
}

// Delete removes the record held by the confirmation dialog.
// On failure the dialog stays open so the user can retry or cancel.
func (e *Editor[R, F]) Delete(ctx context.Context) error {
	e.mu.Lock()
	if e.deleting == nil {
		e.mu.Unlock()
		return ErrNoDeleteTarget
	}
	id := (*e.deleting).RecordID()
	e.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	_, err, _ := e.inflight.Do("delete:"+id, func() (interface{}, error) {
		err := e.cfg.Collaborator.Delete(ctx, id)

		e.mu.Lock()
		if err != nil {
			e.notify(Failure, core.UserMessage(err, e.cfg.Messages.DeleteFailed))
			e.mu.Unlock()
			return nil, errors.Wrap(err, "deleting record")
		}
		if e.deleting != nil && (*e.deleting).RecordID() == id {
			e.deleting = nil
		}
		e.notify(Success, e.cfg.Messages.Deleted)
		e.mu.Unlock()

		if !e.cfg.DeferRefresh {
			_ = e.Refresh(ctx)
		}
		return nil, nil
	})
	return err
}

// Reset closes both dialogs.
func (e *Editor[R, F]) Reset() {
	e.mu.Lock()
	e.form = nil
	e.deleting = nil
	e.mu.Unlock()
}

// Notices drains the queued notifications.
func (e *Editor[R, F]) Notices() []Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.notices
	e.notices = nil
	return n
}

// digest identifies submitted values, attachments included.
func digest(values interface{}) string {
	h := sha256.New()
	if err := gob.NewEncoder(h).Encode(values); err != nil {
		fmt.Fprintf(h, "%#v", values)
	}
	return hex.EncodeToString(h.Sum(nil))
}
