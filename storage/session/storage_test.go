package sessionstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/session"
	testutil "github.com/katikolakarthik/el-frontend/tests"
)

// roundTrip returns a request carrying the cookies set on rec.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestStorage(t *testing.T) {
	codec := session.NewCodec("test", []byte("secret"), time.Hour)
	backends := map[string]session.Storage{
		"cookie": NewCookieStorage("user", time.Hour, false, codec),
		"memory": NewInmemStorage("user", time.Hour, false),
	}

	for name, storage := range backends {
		t.Run(name, func(t *testing.T) {
			_, err := storage.Load(httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, session.ErrNoSession, err)

			rec := httptest.NewRecorder()
			require.NoError(t, storage.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testutil.StudentIdentity))
			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "user", cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)

			req := roundTrip(rec)
			id, err := storage.Load(req)
			require.NoError(t, err)
			assert.Equal(t, testutil.StudentIdentity, id)

			rec = httptest.NewRecorder()
			require.NoError(t, storage.Clear(rec, req))
			cleared := rec.Result().Cookies()
			require.Len(t, cleared, 1)
			assert.Equal(t, -1, cleared[0].MaxAge)
		})
	}
}

func TestCookieStorage_tampered(t *testing.T) {
	storage := NewCookieStorage("user", time.Hour, false, session.NewCodec("test", []byte("secret"), time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: "not-a-token"})

	_, err := storage.Load(req)
	require.Error(t, err)
	assert.NotEqual(t, session.ErrNoSession, err)
}

func TestInmemStorage(t *testing.T) {
	storage := NewInmemStorage("user", time.Hour, false)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	require.NoError(t, storage.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testutil.AdminIdentity))
	req := roundTrip(rec)

	t.Run("save rotates the session id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, storage.Save(rec, req, testutil.AdminIdentity))
		assert.Equal(t, 1, storage.Len())

		_, err := storage.Load(req)
		assert.Equal(t, session.ErrNoSession, err)
		req = roundTrip(rec)
	})

	t.Run("clear forgets the record", func(t *testing.T) {
		require.NoError(t, storage.Clear(httptest.NewRecorder(), req))
		assert.Equal(t, 0, storage.Len())
		_, err := storage.Load(req)
		assert.Equal(t, session.ErrNoSession, err)
	})

	t.Run("expired", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, storage.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testutil.AdminIdentity))
		now = now.Add(2 * time.Hour)

		_, err := storage.Load(roundTrip(rec))
		assert.Equal(t, session.ErrNoSession, err)
		assert.Equal(t, 0, storage.Len())
	})
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()

	s, err := New(conf)
	require.NoError(t, err)
	assert.IsType(t, &CookieStorage{}, s)

	conf.Session.Backend = BackendMemory
	s, err = New(conf)
	require.NoError(t, err)
	assert.IsType(t, &InmemStorage{}, s)

	conf.Session.Backend = "bogus"
	_, err = New(conf)
	assert.Error(t, err)
}
