package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
)

const loginFailedText = "Login failed"

type (
	// Authenticator checks credentials against the remote API.
	Authenticator interface {
		Authenticate(ctx context.Context, identifier, secret string) (Identity, error)
	}

	// Storage is the durable copy of the live session.
	Storage interface {
		// Load returns ErrNoSession when nothing is stored.
		Load(r *http.Request) (Identity, error)
		Save(w http.ResponseWriter, r *http.Request, id Identity) error
		Clear(w http.ResponseWriter, r *http.Request) error
	}
)

// AuthenticationFailed is returned by Login when credentials are rejected or cannot be checked.
type AuthenticationFailed struct {
	Message string
	Err     error
}

func (e *AuthenticationFailed) Error() string { return e.Message }
func (e *AuthenticationFailed) Cause() error  { return e.Err }

// UserMessage lets core.UserMessage surface Message as-is.
func (e *AuthenticationFailed) UserMessage() string { return e.Message }

// Store restores sessions from durable storage and creates them on login.
type Store struct {
	auth    Authenticator
	storage Storage
	logger  core.Logger
}

func NewStore(auth Authenticator, storage Storage, logger core.Logger) *Store {
	return &Store{auth: auth, storage: storage, logger: logger}
}

// Restore reads durable storage for the request.
// Unreadable or invalid records are logged and treated as no session.
func (s *Store) Restore(w http.ResponseWriter, r *http.Request) *Session {
	sess := &Session{store: s, w: w, r: r}
	id, err := s.storage.Load(r)
	switch {
	case err == nil:
		if vErr := id.Validate(); vErr != nil {
			s.logger.Warn(fmt.Sprintf("discarding stored session: %v", vErr), vErr)
			break
		}
		sess.live = &id
	case errors.Cause(err) == ErrNoSession:
	default:
		s.logger.Warn(fmt.Sprintf("restoring session: %v", err), err)
	}
	return sess
}

// Session is the live session of one request.
// IsAuthenticated and Role are projections of the live identity, never stored apart from it.
type Session struct {
	store *Store
	w     http.ResponseWriter
	r     *http.Request

	mu   sync.RWMutex
	live *Identity
}

// Login checks the credentials and, on success, makes the returned identity the live session.
// On failure the current session is left untouched and an *AuthenticationFailed is returned.
func (s *Session) Login(ctx context.Context, identifier, secret string) (Identity, error) {
	id, err := s.store.auth.Authenticate(ctx, strings.TrimSpace(identifier), secret)
	if err != nil {
		return Identity{}, &AuthenticationFailed{Message: core.UserMessage(err, loginFailedText), Err: err}
	}
	if err = id.Validate(); err != nil {
		return Identity{}, &AuthenticationFailed{Message: loginFailedText, Err: err}
	}
	if err = s.store.storage.Save(s.w, s.r, id); err != nil {
		return Identity{}, &AuthenticationFailed{Message: loginFailedText, Err: errors.Wrap(err, "saving session")}
	}

	s.mu.Lock()
	s.live = &id
	s.mu.Unlock()
	return id, nil
}

// Logout clears durable storage and the live identity. Calling it without a session is fine.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.live = nil
	s.mu.Unlock()
	if err := s.store.storage.Clear(s.w, s.r); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return nil
}

// Update replaces the live identity and its durable copy wholesale.
func (s *Session) Update(id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := s.store.storage.Save(s.w, s.r, id); err != nil {
		return errors.Wrap(err, "saving session")
	}
	s.mu.Lock()
	s.live = &id
	s.mu.Unlock()
	return nil
}

// Identity returns a copy of the live identity.
func (s *Session) Identity() (Identity, bool) {
	if s == nil {
		return Identity{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live == nil {
		return Identity{}, false
	}
	return *s.live, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Identity()
	return ok
}

func (s *Session) Role() (Role, bool) {
	id, ok := s.Identity()
	if !ok {
		return 0, false
	}
	return id.Role, true
}
