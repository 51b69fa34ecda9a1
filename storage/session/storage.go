// Package sessionstore holds the durable session backends: a signed cookie, redis and memory.
package sessionstore

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/session"
)

const (
	BackendCookie = "cookie"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// New builds the backend named by conf.Session.Backend.
func New(conf *core.Config) (session.Storage, error) {
	sc := conf.Session
	switch sc.Backend {
	case BackendCookie, "":
		codec := session.NewCodec(conf.AppName, []byte(conf.SecretKey), sc.MaxAge)
		return NewCookieStorage(sc.CookieName, sc.MaxAge, sc.Secure, codec), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, errors.Wrapf(err, "connecting to redis at %s", sc.RedisAddr)
		}
		return NewRedisStorage(client, sc.CookieName, sc.MaxAge, sc.Secure), nil
	case BackendMemory:
		return NewInmemStorage(sc.CookieName, sc.MaxAge, sc.Secure), nil
	default:
		return nil, errors.Errorf("unknown session backend %q", sc.Backend)
	}
}

type cookieJar struct {
	name   string
	maxAge time.Duration
	secure bool
}

func (j cookieJar) read(r *http.Request) (string, error) {
	c, err := r.Cookie(j.name)
	if err != nil || c.Value == "" {
		return "", session.ErrNoSession
	}
	return c.Value, nil
}

func (j cookieJar) write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(j.maxAge / time.Second),
		Expires:  time.Now().Add(j.maxAge),
		Secure:   j.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j cookieJar) expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   j.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
