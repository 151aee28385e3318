package repository

import (
	"context"
	"errors"

	"github.com/schedulr/admin-api/internal/domain/entity"
)

// Sentinel errors surfaced by implementations so callers can classify
// store failures without inspecting driver types.
var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("email or username already taken")
)

// ListParams narrows a List call. Search matches username or email as a
// substring. Skip/Take page the result; Take is expected to be pre-capped
// by the caller.
type ListParams struct {
	Search string
	Skip   int
	Take   int
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Name                *string
	Email               *string
	Username            *string
	Bio                 *string
	TimeZone            *string
	WeekStart           *string
	Theme               *string
	DefaultScheduleID   *int64
	Locale              *string
	TimeFormat          *int
	AllowDynamicBooking *bool
	Role                *entity.Role
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, p ListParams) ([]*entity.User, error)
	Update(ctx context.Context, id int64, p UpdateParams) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}
