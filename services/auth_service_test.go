package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsroom-cms/config"
	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) AuthService {
	jwtConfig := config.JWTConfig{Secret: "test-secret", Issuer: "test", Expiration: time.Hour}
	return NewAuthService(repositories.NewDocumentRepository[models.User](newTestDB(t)), jwtConfig, testLogger)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, models.SignupRequest{Email: "Editor@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "editor@example.com", created.Data.Email)
	assert.NotEqual(t, "password123", created.Data.Password)

	_, err = svc.Signup(ctx, models.SignupRequest{Email: "editor@example.com", Password: "other-pass"})
	var conflict models.ErrorConflict
	assert.True(t, errors.As(err, &conflict))

	login, err := svc.Login(ctx, models.LoginRequest{Email: "editor@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Data.Token)
	assert.Equal(t, models.MsgLoginSuccess, login.Message)

	user, err := svc.Authenticate(ctx, login.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Data.ID, user.ID)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{Email: "editor@example.com", Password: "password123"})
	require.NoError(t, err)

	var unauthorized models.ErrorUnauthorized
	_, err = svc.Login(ctx, models.LoginRequest{Email: "editor@example.com", Password: "wrong"})
	assert.True(t, errors.As(err, &unauthorized))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, errors.As(err, &unauthorized))

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.True(t, errors.As(err, &unauthorized))
}
