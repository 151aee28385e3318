package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schedulr/admin-api/internal/domain/entity"
	"github.com/schedulr/admin-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, username, bio, time_zone, week_start, theme,
	default_schedule_id, locale, time_format, allow_dynamic_booking, role, avatar,
	password, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.Bio, &u.TimeZone,
		&u.WeekStart, &u.Theme, &u.DefaultScheduleID, &u.Locale, &u.TimeFormat,
		&u.AllowDynamicBooking, &u.Role, &u.Avatar, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return u, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, username, bio, time_zone, week_start, theme,
			default_schedule_id, locale, time_format, allow_dynamic_booking, role, avatar, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Username, u.Bio, u.TimeZone, u.WeekStart, u.Theme,
		u.DefaultScheduleID, u.Locale, u.TimeFormat, u.AllowDynamicBooking, u.Role,
		u.Avatar, u.Password)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// List pages users ordered by id ascending so pagination stays stable.
// Search is a case-insensitive substring match on username or email.
func (r *UserRepository) List(ctx context.Context, p repository.ListParams) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if p.Search != "" {
		query += ` WHERE username ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+p.Search+"%")
	}
	query += fmt.Sprintf(` ORDER BY id ASC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, p.Skip, p.Take)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies only the supplied fields. With an empty params set it still
// touches updated_at and returns the current row, so a no-op update succeeds.
func (r *UserRepository) Update(ctx context.Context, id int64, p repository.UpdateParams) (*entity.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.Bio != nil {
		add("bio", *p.Bio)
	}
	if p.TimeZone != nil {
		add("time_zone", *p.TimeZone)
	}
	if p.WeekStart != nil {
		add("week_start", *p.WeekStart)
	}
	if p.Theme != nil {
		add("theme", *p.Theme)
	}
	if p.DefaultScheduleID != nil {
		add("default_schedule_id", *p.DefaultScheduleID)
	}
	if p.Locale != nil {
		add("locale", *p.Locale)
	}
	if p.TimeFormat != nil {
		add("time_format", *p.TimeFormat)
	}
	if p.AllowDynamicBooking != nil {
		add("allow_dynamic_booking", *p.AllowDynamicBooking)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
