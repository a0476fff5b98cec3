package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role belongs to exactly one application; (application_id, name) is unique.
type Role struct {
	ID            int64
	ApplicationID int64
	Name          string
	CreatedAt     time.Time
}

// RoleGrant is a resolved role a user holds, either directly or through a
// group. The numeric IDs identify the grant; the names are what gets embedded
// in tokens.
type RoleGrant struct {
	RoleID        int64
	ApplicationID int64
	Application   string
	Role          string
}

// String renders the grant in its "application:role" token form.
func (g RoleGrant) String() string {
	return g.Application + ":" + g.Role
}

// ParseRoleGrant parses an "application:role" string back into a name-only
// grant, as decoded from token claims.
func ParseRoleGrant(s string) (RoleGrant, error) {
	app, role, ok := strings.Cut(s, ":")
	if !ok || app == "" || role == "" {
		return RoleGrant{}, fmt.Errorf("malformed role grant %q", s)
	}
	return RoleGrant{Application: app, Role: role}, nil
}
