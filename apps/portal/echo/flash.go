package echoportal

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katikolakarthik/el-frontend/core/listeditor"
)

const (
	flashCookie = "flash"
	flashTTL    = time.Minute

	ctxFlashKey = "flashes"
)

// flash is a notification shown once, on the next rendered screen.
type flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

type flashBox struct {
	items    []flash
	incoming bool // items came from the cookie, which must be expired once shown
}

type flashClaims struct {
	Flashes []flash `json:"fl"`
	jwt.StandardClaims
}

// flashCodec signs the flashes carried over a redirect.
type flashCodec struct {
	secret []byte
}

func newFlashCodec(secret []byte) *flashCodec {
	return &flashCodec{secret: secret}
}

func (c *flashCodec) encode(flashes []flash) (string, error) {
	cl := flashClaims{
		Flashes:        flashes,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(flashTTL).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	return token, errors.Wrap(err, "signing flashes")
}

func (c *flashCodec) decode(token string) ([]flash, error) {
	var cl flashClaims
	_, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing flashes")
	}
	return cl.Flashes, nil
}

func (s *server) flashMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		box := &flashBox{}
		if c, err := ctx.Cookie(flashCookie); err == nil && c.Value != "" {
			if box.items, err = s.flashes.decode(c.Value); err != nil {
				s.deps.Logger.Debug(err.Error())
			}
			box.incoming = true
		}
		ctx.Set(ctxFlashKey, box)
		return next(ctx)
	}
}

func getFlashBox(ctx echo.Context) *flashBox {
	box, ok := ctx.Get(ctxFlashKey).(*flashBox)
	if !ok {
		box = &flashBox{}
		ctx.Set(ctxFlashKey, box)
	}
	return box
}

func addFlash(ctx echo.Context, kind, message string) {
	box := getFlashBox(ctx)
	box.items = append(box.items, flash{Kind: kind, Message: message})
}

func flashSuccess(ctx echo.Context, message string) { addFlash(ctx, "success", message) }
func flashError(ctx echo.Context, message string)   { addFlash(ctx, "error", message) }

// addNotices moves the notices of a list editor into the flashes.
func addNotices(ctx echo.Context, notices []listeditor.Notice) {
	for _, n := range notices {
		addFlash(ctx, n.Kind.String(), n.Message)
	}
}

// takeFlashes returns the pending flashes and forgets them.
func takeFlashes(ctx echo.Context) []flash {
	box := getFlashBox(ctx)
	items := box.items
	box.items = nil
	if box.incoming {
		expireFlashCookie(ctx)
		box.incoming = false
	}
	return items
}

func expireFlashCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true})
}

// redirect carries the pending flashes over to the next request.
func (s *server) redirect(ctx echo.Context, code int, location string) error {
	box := getFlashBox(ctx)
	if len(box.items) > 0 {
		token, err := s.flashes.encode(box.items)
		if err != nil {
			return err
		}
		ctx.SetCookie(&http.Cookie{
			Name:     flashCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   int(flashTTL / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		box.items = nil
		box.incoming = false
	} else if box.incoming {
		expireFlashCookie(ctx)
		box.incoming = false
	}
	return ctx.Redirect(code, location)
}
