package application_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schedulr/admin-api/internal/application"
	"github.com/schedulr/admin-api/internal/domain/entity"
)

func TestRedact(t *testing.T) {
	hash := "$2a$10$secret"
	u := entity.User{ID: 1, Email: "a@x.com", Password: &hash}

	r := application.Redact(u)
	require.Nil(t, r.Password)
	require.NotNil(t, u.Password, "original must not be mutated")
	require.Equal(t, "a@x.com", r.Email)

	// idempotent on an already redacted copy
	rr := application.Redact(r)
	require.Nil(t, rr.Password)
}
