package sessionstore

import (
	"net/http"
	"time"

	"github.com/katikolakarthik/el-frontend/core/session"
)

// CookieStorage keeps the whole identity client-side, in a signed token.
type CookieStorage struct {
	jar   cookieJar
	codec *session.Codec
}

var _ session.Storage = (*CookieStorage)(nil)

func NewCookieStorage(name string, maxAge time.Duration, secure bool, codec *session.Codec) *CookieStorage {
	return &CookieStorage{jar: cookieJar{name: name, maxAge: maxAge, secure: secure}, codec: codec}
}

func (s *CookieStorage) Load(r *http.Request) (session.Identity, error) {
	token, err := s.jar.read(r)
	if err != nil {
		return session.Identity{}, err
	}
	return s.codec.Decode(token)
}

func (s *CookieStorage) Save(w http.ResponseWriter, _ *http.Request, id session.Identity) error {
	token, err := s.codec.Encode(id)
	if err != nil {
		return err
	}
	s.jar.write(w, token)
	return nil
}

func (s *CookieStorage) Clear(w http.ResponseWriter, _ *http.Request) error {
	s.jar.expire(w)
	return nil
}
