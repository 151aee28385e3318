package application

import (
	"context"
	"strconv"
	"time"

	"github.com/schedulr/admin-api/internal/domain/entity"
	"github.com/schedulr/admin-api/pkg/helpers"
)

const sessionTTL = 24 * time.Hour

func sessionKey(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Authenticate validates email/password and returns the user without issuing
// tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if u.Password == nil || !helpers.CompareHashAndPassword(*u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records the session hash
// in Redis. The session carries the role so the admin gate can authorize
// without a store round-trip.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	uid := strconv.FormatInt(u.ID, 10)
	access, aexp, err := s.JWT.GenerateAccessToken(uid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(uid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		fields := map[string]any{
			"user_id":    uid,
			"email":      u.Email,
			"role":       string(u.Role),
			"created_at": nowRFC3339(),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &LoginResponse{UserID: u.ID, Email: u.Email, Role: string(u.Role)}, pair, nil
}

// Refresh rotates the token pair for a valid refresh token with a live
// session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, u)
}

// Logout drops the server-side session.
func (s *Service) Logout(ctx context.Context, userID int64) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}
