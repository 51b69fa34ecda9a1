package session

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/katikolakarthik/el-frontend/core"
)

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the authenticated user as returned by the remote API.
type Identity struct {
	ID              string      `json:"_id"`
	Name            string      `json:"name"`
	Role            Role        `json:"role"`
	Email           string      `json:"email,omitempty"`
	CourseName      string      `json:"courseName,omitempty"`
	PaidAmount      null.Int    `json:"paidAmount"`
	RemainingAmount null.Int    `json:"remainingAmount"`
	EnrolledDate    null.String `json:"enrolledDate"`
	ProfileImage    string      `json:"profileImage,omitempty"`
}

var _ core.Personer = Identity{}

// Validate checks the fields a session cannot live without.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.ID) == "" {
		return errors.Wrap(ErrInvalidIdentity, "missing id")
	}
	if !id.Role.Valid() {
		return errors.Wrap(ErrInvalidIdentity, "missing role")
	}
	return nil
}

func (id Identity) Person() core.Person {
	return core.Person{ID: id.ID, Username: id.Name, Email: id.Email}
}

// Initial is the upper-cased first letter of the name, used for avatars.
func (id Identity) Initial() string {
	for _, r := range strings.TrimSpace(id.Name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// EnrolledOn parses EnrolledDate, which the API sends either as a date or a timestamp.
func (id Identity) EnrolledOn() (time.Time, bool) {
	if !id.EnrolledDate.Valid {
		return time.Time{}, false
	}
	return ParseDate(id.EnrolledDate.String)
}

// Remaining is the amount still owed on the course; 0 when unknown.
func (id Identity) Remaining() int {
	if id.RemainingAmount.Valid && id.RemainingAmount.Int > 0 {
		return id.RemainingAmount.Int
	}
	return 0
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts the date formats the remote API is known to produce.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
