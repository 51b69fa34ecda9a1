package session

import (
	"fmt"
	"strings"
)

// Role is the closed set of portal roles. The zero value is not a valid role.
type Role uint8

const (
	Admin Role = iota + 1
	Student
)

var roles = []Role{Admin, Student}

// Roles lists every valid role.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// MenuItem is one entry of a role's navigation menu.
type MenuItem struct {
	Label string
	Path  string
}

type roleInfo struct {
	slug     string
	title    string
	basePath string
	menu     []MenuItem
}

var roleInfos = map[Role]roleInfo{
	Admin: {
		slug:     "admin",
		title:    "Admin Panel",
		basePath: "/admin",
		menu: []MenuItem{
			{Label: "Dashboard", Path: "/admin/dashboard"},
			{Label: "Students", Path: "/admin/students"},
			{Label: "Assignments", Path: "/admin/assignments"},
		},
	},
	Student: {
		slug:     "user",
		title:    "Student Portal",
		basePath: "/student",
		menu: []MenuItem{
			{Label: "Dashboard", Path: "/student/dashboard"},
			{Label: "Assignments", Path: "/student/assignments"},
			{Label: "Profile", Path: "/student/profile"},
		},
	},
}

// ParseRole maps the remote API role strings onto a Role.
// The API calls students "user"; "student" is accepted too.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return Admin, nil
	case "user", "student":
		return Student, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, ok := roleInfos[r]
	return ok
}

// String returns the wire name of the role.
func (r Role) String() string {
	if info, ok := roleInfos[r]; ok {
		return info.slug
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Title is the shell heading shown to the role.
func (r Role) Title() string { return roleInfos[r].title }

// BasePath is the URL prefix of every screen of the role.
func (r Role) BasePath() string { return roleInfos[r].basePath }

// Landing is the default screen of the role.
func (r Role) Landing() string {
	if m := roleInfos[r].menu; len(m) > 0 {
		return m[0].Path
	}
	return "/login"
}

// Menu returns a copy of the role's navigation menu.
func (r Role) Menu() []MenuItem {
	m := roleInfos[r].menu
	out := make([]MenuItem, len(m))
	copy(out, m)
	return out
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
