package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/schedulr/admin-api/internal/domain/entity"
	repo "github.com/schedulr/admin-api/internal/domain/repository"
	"github.com/schedulr/admin-api/pkg/helpers"
	"github.com/schedulr/admin-api/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrConflict           = errors.New("email or username already taken")
)

// DefaultListTake bounds list payloads when the caller does not page
// explicitly. MaxListTake is the hard cap enforced by request validation.
const (
	DefaultListTake = 40
	MaxListTake     = 40
)

// Service implements the admin user operations and the session flows that
// feed the authorization gate.
type Service struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Rabbit       *helpers.RabbitPublisher
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	WebAppURL    string
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, pub *helpers.RabbitPublisher, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex, webAppURL string) *Service {
	return &Service{
		Repo:         r,
		JWT:          jwt,
		Redis:        rdb,
		Rabbit:       pub,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		WebAppURL:    webAppURL,
	}
}

// UserView is the redacted response shape shared by all admin operations.
// It is always built from a redacted copy, so the password hash cannot leak.
type UserView struct {
	ID                  int64     `json:"id"`
	Name                *string   `json:"name"`
	Email               string    `json:"email"`
	Username            *string   `json:"username"`
	Bio                 *string   `json:"bio"`
	TimeZone            string    `json:"timeZone"`
	WeekStart           string    `json:"weekStart"`
	Theme               *string   `json:"theme"`
	DefaultScheduleID   *int64    `json:"defaultScheduleId"`
	Locale              *string   `json:"locale"`
	TimeFormat          int       `json:"timeFormat"`
	AllowDynamicBooking bool      `json:"allowDynamicBooking"`
	Role                string    `json:"role"`
	Avatar              *string   `json:"avatar"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// NewUserView redacts u and reshapes it for a response. The stored avatar
// reference passes through untouched; list resolves it separately.
func NewUserView(u entity.User) *UserView {
	r := Redact(u)
	return &UserView{
		ID:                  r.ID,
		Name:                r.Name,
		Email:               r.Email,
		Username:            r.Username,
		Bio:                 r.Bio,
		TimeZone:            r.TimeZone,
		WeekStart:           r.WeekStart,
		Theme:               r.Theme,
		DefaultScheduleID:   r.DefaultScheduleID,
		Locale:              r.Locale,
		TimeFormat:          r.TimeFormat,
		AllowDynamicBooking: r.AllowDynamicBooking,
		Role:                string(r.Role),
		Avatar:              r.Avatar,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// requestedUser resolves the target of an admin operation or fails with
// ErrUserNotFound.
func (s *Service) requestedUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Get returns the redacted target user. Avatar resolution is not applied
// here; callers receive the stored reference.
func (s *Service) Get(ctx context.Context, userID int64) (*UserView, error) {
	u, err := s.requestedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewUserView(*u), nil
}

type ListInput struct {
	Search string
	Skip   int
	Take   int
}

// List returns a page of users ordered by id, each redacted and with the
// avatar replaced by its resolved URL.
func (s *Service) List(ctx context.Context, in ListInput) ([]*UserView, error) {
	take := in.Take
	if take <= 0 || take > MaxListTake {
		take = DefaultListTake
	}
	users, err := s.Repo.List(ctx, repo.ListParams{Search: in.Search, Skip: in.Skip, Take: take})
	if err != nil {
		return nil, err
	}
	views := make([]*UserView, 0, len(users))
	for _, u := range users {
		v := NewUserView(*u)
		url := AvatarURL(s.WebAppURL, u.Avatar, u.Username, u.Email)
		v.Avatar = &url
		views = append(views, v)
	}
	return views, nil
}

// CreateInput carries the writable subset of user fields. Avatar is excluded
// on purpose; it is only set through the separate upload flow.
type CreateInput struct {
	Name                *string
	Email               string
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

func (s *Service) Create(ctx context.Context, in CreateInput) (*UserView, error) {
	u := &entity.User{
		Name:                in.Name,
		Email:               in.Email,
		Username:            in.Username,
		Bio:                 in.Bio,
		TimeZone:            "Europe/London",
		WeekStart:           "Sunday",
		Theme:               in.Theme,
		DefaultScheduleID:   in.DefaultScheduleID,
		Locale:              in.Locale,
		TimeFormat:          12,
		AllowDynamicBooking: true,
		Role:                entity.RoleUser,
	}
	if in.TimeZone != nil {
		u.TimeZone = *in.TimeZone
	}
	if in.WeekStart != nil {
		u.WeekStart = *in.WeekStart
	}
	if in.TimeFormat != nil {
		u.TimeFormat = *in.TimeFormat
	}
	if in.AllowDynamicBooking != nil {
		u.AllowDynamicBooking = *in.AllowDynamicBooking
	}
	if in.Role != nil {
		u.Role = *in.Role
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	// Post-create side effects are best effort; the user row is the source
	// of truth and already committed.
	_ = s.indexUser(ctx, u)
	s.publishWelcomeEmail(ctx, u)

	return NewUserView(*u), nil
}

// UpdateInput mirrors CreateInput but every field is optional; nil fields
// are left untouched. An empty input is a valid no-op update.
type UpdateInput struct {
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

func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (*UserView, error) {
	if _, err := s.requestedUser(ctx, userID); err != nil {
		return nil, err
	}
	u, err := s.Repo.Update(ctx, userID, repo.UpdateParams{
		Name:                in.Name,
		Email:               in.Email,
		Username:            in.Username,
		Bio:                 in.Bio,
		TimeZone:            in.TimeZone,
		WeekStart:           in.WeekStart,
		Theme:               in.Theme,
		DefaultScheduleID:   in.DefaultScheduleID,
		Locale:              in.Locale,
		TimeFormat:          in.TimeFormat,
		AllowDynamicBooking: in.AllowDynamicBooking,
		Role:                in.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrConflict
		}
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return NewUserView(*u), nil
}

// Delete permanently removes the user. There is no soft delete and no undo.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	u, err := s.requestedUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Drop any live session and the search document for the removed user.
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, sessionKey(u.ID)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session cleanup failed")
		}
	}
	_ = s.deleteUserIndex(ctx, u.ID)
	return nil
}

func (s *Service) publishWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Rabbit == nil {
		return
	}
	name := u.Email
	if u.Name != nil && *u.Name != "" {
		name = *u.Name
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data: map[string]any{
			"Name":      name,
			"Email":     u.Email,
			"WebAppURL": s.WebAppURL,
		},
	}
	if err := s.Rabbit.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email publish failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":       u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"username": u.Username,
		"bio":      u.Bio,
		"role":     u.Role,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *Service) deleteUserIndex(ctx context.Context, id int64) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return nil
}

// SearchUsers performs a multi_match search over the indexed user documents.
// This is the full-text complement to List's substring filter.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > MaxListTake {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username^2", "name", "bio"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
