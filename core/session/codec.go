package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

var ErrNoSession = errors.New("no session")

type claims struct {
	Identity Identity `json:"usr"`
	jwt.StandardClaims
}

// Codec serializes identities into signed tokens for durable storage.
type Codec struct {
	issuer string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(issuer string, secret []byte, ttl time.Duration) *Codec {
	return &Codec{issuer: issuer, secret: secret, ttl: ttl, now: time.Now}
}

func (c *Codec) Encode(id Identity) (string, error) {
	now := c.now().UTC()
	cl := claims{
		Identity: id,
		StandardClaims: jwt.StandardClaims{
			Issuer:    c.issuer,
			Subject:   id.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(c.ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing session token")
	}
	return token, nil
}

// Decode verifies the token and returns the identity it carries.
func (c *Codec) Decode(token string) (Identity, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return Identity{}, errors.Wrap(err, "parsing session token")
	}
	if cl.Issuer != c.issuer {
		return Identity{}, errors.Errorf("unexpected issuer %q", cl.Issuer)
	}
	if err := cl.Identity.Validate(); err != nil {
		return Identity{}, err
	}
	return cl.Identity, nil
}
