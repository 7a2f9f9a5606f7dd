package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles.
type Role uint8

const (
	RoleStaff Role = iota + 1
	RoleAdmin
)

// View is the landing view a client should open for a role.
type View string

const (
	ViewMenu  View = "menu"
	ViewAdmin View = "admin"
)

// ParseRole parses "admin" or "staff".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "staff":
		return RoleStaff, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

// HomeView is the view composed for the role after login.
func (r Role) HomeView() View {
	switch r {
	case RoleAdmin:
		return ViewAdmin
	case RoleStaff:
		return ViewMenu
	default:
		return ViewMenu
	}
}

// CanManageMenu reports whether the role may create, edit and delete menu items
// and edit the restaurant profile.
func (r Role) CanManageMenu() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

// CanAdminister reports whether the role may use the admin endpoints.
func (r Role) CanAdminister() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStaff:
		return false
	default:
		return false
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
