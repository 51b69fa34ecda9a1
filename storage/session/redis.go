package sessionstore

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core/session"
)

const redisKeyPrefix = "portal:session:"

// RedisStorage keeps identities in redis; the cookie only carries a random session id.
type RedisStorage struct {
	client redis.Cmdable
	jar    cookieJar
}

var _ session.Storage = (*RedisStorage)(nil)

func NewRedisStorage(client redis.Cmdable, cookieName string, maxAge time.Duration, secure bool) *RedisStorage {
	return &RedisStorage{client: client, jar: cookieJar{name: cookieName, maxAge: maxAge, secure: secure}}
}

func getSessionKey(sid string) string {
	return redisKeyPrefix + sid
}

func (s *RedisStorage) Load(r *http.Request) (session.Identity, error) {
	sid, err := s.jar.read(r)
	if err != nil {
		return session.Identity{}, err
	}
	data, err := s.client.Get(r.Context(), getSessionKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Identity{}, session.ErrNoSession
		}
		return session.Identity{}, errors.Wrap(err, "reading session from redis")
	}
	var id session.Identity
	if err = json.Unmarshal(data, &id); err != nil {
		return session.Identity{}, errors.Wrap(err, "decoding stored session")
	}
	return id, nil
}

// Save stores id under a fresh session id and drops the previous record, if any.
func (s *RedisStorage) Save(w http.ResponseWriter, r *http.Request, id session.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	sid := uuid.NewString()
	ctx := r.Context()

	pipe := s.client.TxPipeline()
	if old, err := s.jar.read(r); err == nil {
		pipe.Del(ctx, getSessionKey(old))
	}
	pipe.Set(ctx, getSessionKey(sid), data, s.jar.maxAge)
	if _, err = pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "writing session to redis")
	}
	s.jar.write(w, sid)
	return nil
}

func (s *RedisStorage) Clear(w http.ResponseWriter, r *http.Request) error {
	s.jar.expire(w)
	sid, err := s.jar.read(r)
	if err != nil {
		return nil
	}
	if err = s.client.Del(r.Context(), getSessionKey(sid)).Err(); err != nil {
		return errors.Wrap(err, "deleting session from redis")
	}
	return nil
}
