package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	userapp "github.com/schedulr/admin-api/internal/application"
	"github.com/schedulr/admin-api/internal/domain/entity"
	"github.com/schedulr/admin-api/internal/domain/repository"
	handlers "github.com/schedulr/admin-api/internal/interface/http"
	"github.com/schedulr/admin-api/internal/interface/middleware"
	"github.com/schedulr/admin-api/pkg/validation"
)

// stubRepo records store access so tests can verify the gate rejects before
// any data access happens.
type stubRepo struct {
	users map[int64]*entity.User
	calls int
}

func newStubRepo() *stubRepo {
	hash := "$2a$10$hash"
	alice := "alice"
	return &stubRepo{users: map[int64]*entity.User{
		1: {ID: 1, Email: "alice@x.com", Username: &alice, TimeZone: "Europe/London",
			WeekStart: "Sunday", TimeFormat: 12, AllowDynamicBooking: true,
			Role: entity.RoleUser, Password: &hash},
	}}
}

func (s *stubRepo) Create(ctx context.Context, u *entity.User) error {
	s.calls++
	u.ID = int64(len(s.users) + 1)
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.calls++
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) List(ctx context.Context, p repository.ListParams) ([]*entity.User, error) {
	s.calls++
	out := []*entity.User{}
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, p repository.UpdateParams) (*entity.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	s.calls++
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

var _ repository.UserRepository = (*stubRepo)(nil)

func asCaller(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCaller(c, middleware.Caller{ID: 99, Email: "caller@x.com", Role: role})
		c.Next()
	}
}

func newTestRouter(repo repository.UserRepository, sessionMW ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()

	svc := userapp.NewService(repo, nil, nil, nil, logrus.New(), nil, "", "http://localhost:3000")
	h := handlers.NewAdminUserHandler(svc, logrus.New())

	e := gin.New()
	admin := e.Group("/api/admin")
	admin.Use(sessionMW...)
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", h.List)
	admin.GET("/users/:id", h.Get)
	admin.POST("/users", h.Add)
	admin.PATCH("/users/:id", h.Update)
	admin.DELETE("/users/:id", h.Delete)
	return e
}

func do(e *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestListTakeValidation(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"take at cap", "?take=40", http.StatusOK},
		{"take above cap", "?take=41", http.StatusBadRequest},
		{"take zero", "?take=0", http.StatusBadRequest},
		{"negative skip", "?skip=-1", http.StatusBadRequest},
		{"no paging", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestRouter(newStubRepo(), asCaller(entity.RoleAdmin))
			w := do(e, http.MethodGet, "/api/admin/users"+tt.query, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestGetBadID(t *testing.T) {
	e := newTestRouter(newStubRepo(), asCaller(entity.RoleAdmin))
	w := do(e, http.MethodGet, "/api/admin/users/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "User id is required")
}

func TestGetNotFound(t *testing.T) {
	e := newTestRouter(newStubRepo(), asCaller(entity.RoleAdmin))
	w := do(e, http.MethodGet, "/api/admin/users/999999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetNeverExposesPassword(t *testing.T) {
	e := newTestRouter(newStubRepo(), asCaller(entity.RoleAdmin))
	w := do(e, http.MethodGet, "/api/admin/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "password")
	require.NotContains(t, w.Body.String(), "$2a$")
}

func TestAddUser(t *testing.T) {
	repo := newStubRepo()
	e := newTestRouter(repo, asCaller(entity.RoleAdmin))
	w := do(e, http.MethodPost, "/api/admin/users", gin.H{"email": "new@x.com", "username": "newbie"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "User added successfully")
	require.NotContains(t, w.Body.String(), "password")
}

func TestAddUserInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"username": "x"}},
		{"bad email", gin.H{"email": "not-an-email"}},
		{"bad theme", gin.H{"email": "a@x.com", "theme": "neon"}},
		{"bad time format", gin.H{"email": "a@x.com", "timeFormat": 13}},
		{"bad role", gin.H{"email": "a@x.com", "role": "ROOT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestRouter(newStubRepo(), asCaller(entity.RoleAdmin))
			w := do(e, http.MethodPost, "/api/admin/users", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestUpdateEmptyBody(t *testing.T) {
	e := newTestRouter(newStubRepo(), asCaller(entity.RoleAdmin))
	w := do(e, http.MethodPatch, "/api/admin/users/1", gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "User updated successfully")
}

func TestDeleteThenGet(t *testing.T) {
	repo := newStubRepo()
	e := newTestRouter(repo, asCaller(entity.RoleAdmin))

	w := do(e, http.MethodDelete, "/api/admin/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "User deleted successfully")

	w = do(e, http.MethodGet, "/api/admin/users/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNonAdminRejectedBeforeStoreAccess(t *testing.T) {
	repo := newStubRepo()
	e := newTestRouter(repo, asCaller(entity.RoleUser))

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/users/1"},
		{http.MethodPost, "/api/admin/users"},
		{http.MethodPatch, "/api/admin/users/1"},
		{http.MethodDelete, "/api/admin/users/1"},
	} {
		w := do(e, req.method, req.path, nil)
		require.Equal(t, http.StatusForbidden, w.Code, "%s %s", req.method, req.path)
	}
	require.Zero(t, repo.calls, "store must not be touched for non-admin callers")
}

func TestUnauthenticatedRejected(t *testing.T) {
	repo := newStubRepo()
	e := newTestRouter(repo) // no session middleware at all

	w := do(e, http.MethodGet, "/api/admin/users", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, repo.calls)
}
