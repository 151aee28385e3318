package entity

import (
	"time"
)

// Role is the authorization role stored on each user row.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash and must never be serialized; response types
// are built from redacted copies (see application.Redact).
//
// Nullable columns are pointers so partial updates can distinguish
// "not supplied" from "set to empty".
type User struct {
	ID                  int64
	Name                *string
	Email               string
	Username            *string
	Bio                 *string
	TimeZone            string
	WeekStart           string
	Theme               *string
	DefaultScheduleID   *int64
	Locale              *string
	TimeFormat          int
	AllowDynamicBooking bool
	Role                Role
	Avatar              *string
	Password            *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsAdmin reports whether the role grants admin privilege.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}
