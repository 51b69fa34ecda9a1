package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	logsvc "github.com/katikolakarthik/el-frontend/services/logger"
)

type apiErr struct{ msg string }

func (e apiErr) Error() string       { return "api: " + e.msg }
func (e apiErr) UserMessage() string { return e.msg }

type authMock struct {
	users map[string]Identity // {name+":"+password: identity}
	err   error
	calls int
}

func (a *authMock) Authenticate(_ context.Context, identifier, secret string) (Identity, error) {
	a.calls++
	if a.err != nil {
		return Identity{}, a.err
	}
	id, ok := a.users[identifier+":"+secret]
	if !ok {
		return Identity{}, apiErr{msg: "Invalid credentials"}
	}
	return id, nil
}

// memStorage keeps one record, like a browser's local storage for a single origin.
type memStorage struct {
	mu      sync.Mutex
	stored  *Identity
	loadErr error
}

func (m *memStorage) Load(*http.Request) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Identity{}, m.loadErr
	}
	if m.stored == nil {
		return Identity{}, ErrNoSession
	}
	return *m.stored, nil
}

func (m *memStorage) Save(_ http.ResponseWriter, _ *http.Request, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = &id
	return nil
}

func (m *memStorage) Clear(http.ResponseWriter, *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

var (
	admin = Identity{ID: "a1", Name: "Ada", Role: Admin}
	alice = Identity{
		ID:              "s1",
		Name:            "alice",
		Role:            Student,
		CourseName:      "CPC",
		PaidAmount:      null.IntFrom(300),
		RemainingAmount: null.IntFrom(200),
		EnrolledDate:    null.StringFrom("2024-01-10T00:00:00.000Z"),
	}
)

func setup(t *testing.T) (*Store, *authMock, *memStorage) {
	t.Helper()
	auth := &authMock{users: map[string]Identity{
		"Ada:admin123":  admin,
		"alice:secret1": alice,
	}}
	storage := new(memStorage)
	return NewStore(auth, storage, logsvc.NewNopLogger()), auth, storage
}

func restore(store *Store) *Session {
	return store.Restore(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestSession_Login(t *testing.T) {
	store, _, storage := setup(t)

	t.Run("valid credentials", func(t *testing.T) {
		sess := restore(store)
		id, err := sess.Login(context.Background(), " alice ", "secret1")
		require.NoError(t, err)
		assert.Equal(t, alice, id)

		live, ok := sess.Identity()
		assert.True(t, ok)
		assert.Equal(t, alice, live)
		assert.Equal(t, alice, *storage.stored)

		role, ok := sess.Role()
		assert.True(t, ok)
		assert.Equal(t, Student, role)
	})

	t.Run("invalid credentials leave the session untouched", func(t *testing.T) {
		sess := restore(store)
		require.True(t, sess.IsAuthenticated())

		_, err := sess.Login(context.Background(), "Ada", "wrong")
		var authErr *AuthenticationFailed
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, "Invalid credentials", authErr.Message)

		live, _ := sess.Identity()
		assert.Equal(t, alice, live)
		assert.Equal(t, alice, *storage.stored)
	})
}

func TestSession_Login_fallbackMessage(t *testing.T) {
	store, auth, storage := setup(t)
	auth.err = errors.New("connection refused")

	sess := restore(store)
	_, err := sess.Login(context.Background(), "Ada", "admin123")
	var authErr *AuthenticationFailed
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Login failed", authErr.Message)
	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, storage.stored)
}

func TestSession_Login_identityWithoutRole(t *testing.T) {
	store, auth, storage := setup(t)
	auth.users["bob:pwd"] = Identity{ID: "b1", Name: "bob"}

	_, err := restore(store).Login(context.Background(), "bob", "pwd")
	assert.Error(t, err)
	assert.Nil(t, storage.stored)
}

func TestSession_LogoutThenRestore(t *testing.T) {
	store, _, _ := setup(t)

	sess := restore(store)
	_, err := sess.Login(context.Background(), "Ada", "admin123")
	require.NoError(t, err)
	assert.Equal(t, Authorized(Admin), StateOf(restore(store)))

	require.NoError(t, sess.Logout())
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, Unauthorized, StateOf(restore(store)))

	// idempotent
	assert.NoError(t, sess.Logout())
	assert.Equal(t, Unauthorized, StateOf(restore(store)))
}

func TestSession_Update(t *testing.T) {
	store, _, storage := setup(t)
	sess := restore(store)
	_, err := sess.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	updated := Identity{ID: alice.ID, Name: "Alice B.", Role: Student}
	require.NoError(t, sess.Update(updated))

	live, _ := sess.Identity()
	assert.Equal(t, updated, live, "no merge with the previous identity")
	assert.Equal(t, updated, *storage.stored)

	assert.Error(t, sess.Update(Identity{Name: "nobody"}))
	live, _ = sess.Identity()
	assert.Equal(t, updated, live)
}

func TestStore_Restore(t *testing.T) {
	tests := []struct {
		name    string
		stored  *Identity
		loadErr error
		want    GuardState
	}{
		{name: "nothing stored", want: Unauthorized},
		{name: "admin stored", stored: &admin, want: Authorized(Admin)},
		{name: "student stored", stored: &alice, want: Authorized(Student)},
		{name: "unreadable record", loadErr: errors.New("bad signature"), want: Unauthorized},
		{name: "invalid record", stored: &Identity{ID: "x"}, want: Unauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, storage := setup(t)
			storage.stored = tt.stored
			storage.loadErr = tt.loadErr
			assert.Equal(t, tt.want, StateOf(restore(store)))
		})
	}
}
