package sessionstore

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/katikolakarthik/el-frontend/core/session"
)

type inmemEntry struct {
	id      session.Identity
	expires time.Time
}

// InmemStorage keeps identities in process memory. Sessions do not survive a restart.
type InmemStorage struct {
	jar cookieJar
	now func() time.Time

	mutex sync.Mutex
	table map[string]inmemEntry
}

var _ session.Storage = (*InmemStorage)(nil)

func NewInmemStorage(cookieName string, maxAge time.Duration, secure bool) *InmemStorage {
	return &InmemStorage{
		jar:   cookieJar{name: cookieName, maxAge: maxAge, secure: secure},
		now:   time.Now,
		table: make(map[string]inmemEntry),
	}
}

func (s *InmemStorage) Load(r *http.Request) (session.Identity, error) {
	sid, err := s.jar.read(r)
	if err != nil {
		return session.Identity{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, ok := s.table[sid]
	if !ok {
		return session.Identity{}, session.ErrNoSession
	}
	if !s.now().Before(entry.expires) {
		delete(s.table, sid)
		return session.Identity{}, session.ErrNoSession
	}
	return entry.id, nil
}

func (s *InmemStorage) Save(w http.ResponseWriter, r *http.Request, id session.Identity) error {
	sid := uuid.NewString()

	s.mutex.Lock()
	if old, err := s.jar.read(r); err == nil {
		delete(s.table, old)
	}
	s.table[sid] = inmemEntry{id: id, expires: s.now().Add(s.jar.maxAge)}
	s.mutex.Unlock()

	s.jar.write(w, sid)
	return nil
}

func (s *InmemStorage) Clear(w http.ResponseWriter, r *http.Request) error {
	s.jar.expire(w)
	if sid, err := s.jar.read(r); err == nil {
		s.mutex.Lock()
		delete(s.table, sid)
		s.mutex.Unlock()
	}
	return nil
}

// Len is the number of stored sessions, expired ones included.
func (s *InmemStorage) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.table)
}
