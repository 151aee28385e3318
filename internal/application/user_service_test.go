package application_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/schedulr/admin-api/internal/application"
	"github.com/schedulr/admin-api/internal/domain/entity"
	"github.com/schedulr/admin-api/internal/domain/repository"
)

// fakeUserRepo is an in-memory UserRepository that also counts calls so
// tests can assert on side effects.
type fakeUserRepo struct {
	users     map[int64]*entity.User
	nextID    int64
	calls     int
	createErr error
}

func newFakeRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entity.User{}, nextID: 1}
}

func (f *fakeUserRepo) add(u entity.User) *entity.User {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	f.calls++
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.calls++
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, p repository.ListParams) ([]*entity.User, error) {
	f.calls++
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*entity.User{}
	for _, id := range ids {
		u := f.users[id]
		if p.Search != "" {
			name := ""
			if u.Username != nil {
				name = *u.Username
			}
			s := strings.ToLower(p.Search)
			if !strings.Contains(strings.ToLower(name), s) && !strings.Contains(strings.ToLower(u.Email), s) {
				continue
			}
		}
		cp := *u
		out = append(out, &cp)
	}
	if p.Skip < len(out) {
		out = out[p.Skip:]
	} else {
		out = nil
	}
	if p.Take > 0 && p.Take < len(out) {
		out = out[:p.Take]
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id int64, p repository.UpdateParams) (*entity.User, error) {
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = p.Username
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	if p.TimeZone != nil {
		u.TimeZone = *p.TimeZone
	}
	if p.WeekStart != nil {
		u.WeekStart = *p.WeekStart
	}
	if p.Theme != nil {
		u.Theme = p.Theme
	}
	if p.DefaultScheduleID != nil {
		u.DefaultScheduleID = p.DefaultScheduleID
	}
	if p.Locale != nil {
		u.Locale = p.Locale
	}
	if p.TimeFormat != nil {
		u.TimeFormat = *p.TimeFormat
	}
	if p.AllowDynamicBooking != nil {
		u.AllowDynamicBooking = *p.AllowDynamicBooking
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	f.calls++
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newTestService(repo repository.UserRepository) *application.Service {
	logger := logrus.New()
	return application.NewService(repo, nil, nil, nil, logger, nil, "", "http://localhost:3000")
}

func seedUser(repo *fakeUserRepo, email, username string, role entity.Role) *entity.User {
	hash := "$2a$10$hash"
	u := entity.User{
		Email:               email,
		TimeZone:            "Europe/London",
		WeekStart:           "Sunday",
		TimeFormat:          12,
		AllowDynamicBooking: true,
		Role:                role,
		Password:            &hash,
	}
	if username != "" {
		u.Username = &username
	}
	return repo.add(u)
}

func TestServiceGet(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	svc := newTestService(repo)

	view, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, view.ID)
	require.Equal(t, "alice@x.com", view.Email)

	b, err := json.Marshal(view)
	require.NoError(t, err)
	require.NotContains(t, string(b), "password")
}

func TestServiceGetNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, err := svc.Get(context.Background(), 999999)
	require.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestServiceGetKeepsRawAvatar(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	raw := "img.png"
	repo.users[u.ID].Avatar = &raw
	svc := newTestService(repo)

	view, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Avatar)
	require.Equal(t, "img.png", *view.Avatar)
}

func TestServiceListResolvesAvatars(t *testing.T) {
	repo := newFakeRepo()
	withAvatar := seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	raw := "img.png"
	repo.users[withAvatar.ID].Avatar = &raw
	seedUser(repo, "bob@x.com", "", entity.RoleUser)
	svc := newTestService(repo)

	views, err := svc.List(context.Background(), application.ListInput{})
	require.NoError(t, err)
	require.Len(t, views, 2)

	// ordered by id, avatars always resolved URLs, never the stored value
	require.Equal(t, withAvatar.ID, views[0].ID)
	require.NotNil(t, views[0].Avatar)
	require.Equal(t, "http://localhost:3000/alice/avatar.png", *views[0].Avatar)
	require.NotNil(t, views[1].Avatar)
	require.Contains(t, *views[1].Avatar, "gravatar.com/avatar/")

	for _, v := range views {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		require.NotContains(t, string(b), "password")
	}
}

func TestServiceListSearchAndPaging(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	seedUser(repo, "bob@x.com", "bob", entity.RoleUser)
	seedUser(repo, "carol@y.com", "carol", entity.RoleUser)
	svc := newTestService(repo)

	views, err := svc.List(context.Background(), application.ListInput{Search: "x.com"})
	require.NoError(t, err)
	require.Len(t, views, 2)

	views, err = svc.List(context.Background(), application.ListInput{Skip: 1, Take: 1})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "bob@x.com", views[0].Email)
}

func TestServiceCreateDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	view, err := svc.Create(context.Background(), application.CreateInput{Email: "new@x.com"})
	require.NoError(t, err)
	require.Equal(t, "Europe/London", view.TimeZone)
	require.Equal(t, "Sunday", view.WeekStart)
	require.Equal(t, 12, view.TimeFormat)
	require.True(t, view.AllowDynamicBooking)
	require.Equal(t, string(entity.RoleUser), view.Role)
}

func TestServiceCreateConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = repository.ErrConflict
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), application.CreateInput{Email: "dup@x.com"})
	require.ErrorIs(t, err, application.ErrConflict)
}

func TestServiceUpdateEmptyBodyIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	svc := newTestService(repo)

	view, err := svc.Update(context.Background(), u.ID, application.UpdateInput{})
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", view.Email)
	require.Equal(t, "alice", *view.Username)
	require.Equal(t, "Europe/London", view.TimeZone)
}

func TestServiceUpdatePartial(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	svc := newTestService(repo)

	tz := "America/New_York"
	role := entity.RoleAdmin
	view, err := svc.Update(context.Background(), u.ID, application.UpdateInput{TimeZone: &tz, Role: &role})
	require.NoError(t, err)
	require.Equal(t, "America/New_York", view.TimeZone)
	require.Equal(t, "ADMIN", view.Role)
	require.Equal(t, "alice@x.com", view.Email, "unsupplied fields stay untouched")
}

func TestServiceUpdateNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, err := svc.Update(context.Background(), 42, application.UpdateInput{})
	require.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestServiceDeleteIsPermanent(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo, "alice@x.com", "alice", entity.RoleUser)
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), u.ID))

	_, err := svc.Get(context.Background(), u.ID)
	require.ErrorIs(t, err, application.ErrUserNotFound)

	err = svc.Delete(context.Background(), u.ID)
	require.ErrorIs(t, err, application.ErrUserNotFound)
}
