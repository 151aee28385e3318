package application

import (
	"github.com/schedulr/admin-api/internal/domain/entity"
)

// Redact returns a copy of the user with the password hash cleared. The
// original store result is never mutated, and redacting an already redacted
// copy is a no-op.
func Redact(u entity.User) entity.User {
	u.Password = nil
	return u
}
