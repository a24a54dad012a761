// AngelaMos | 2026
// entity.go

package user

import (
	"fmt"
	"time"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleDeveloper      Role = "DEVELOPER"
	RoleTester         Role = "TESTER"
)

// Roles lists every role in declaration order.
var Roles = []Role{
	RoleAdmin,
	RoleProjectManager,
	RoleDeveloper,
	RoleTester,
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleDeveloper, RoleTester:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the exact upper-case role name, the same rule the
// request body validation applies.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf(
			"unknown role %q: %w",
			s,
			core.ErrInvalidInput,
		)
	}
	return role, nil
}

type User struct {
	ID        int64     `db:"id"`
	UserName  string    `db:"user_name"`
	Email     string    `db:"email"`
	FullName  string    `db:"full_name"`
	Role      Role      `db:"role"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) IsNew() bool {
	return u.ID == 0
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
