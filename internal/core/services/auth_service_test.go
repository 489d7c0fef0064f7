package services

import (
	"context"
	"testing"
	"time"

	"telecare/internal/infrastructure/repositories/memory"
	apperrors "telecare/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService() *AuthService {
	return NewAuthService(memory.NewUserRepository(), "test-secret", time.Hour, zap.NewNop().Sugar())
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, SignupInput{
		FullName: "Alice Smith",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	logged, loginToken, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, loginToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, SignupInput{
		FullName: "Alice Smith",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)

	// Unknown email yields the same error, not a user-existence oracle
	_, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	appErr = apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, SignupInput{FullName: "Alice", Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, SignupInput{FullName: "Mallory", Email: "A@Example.com", Password: "secret456"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestSignupValidation(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	cases := []SignupInput{
		{FullName: "", Email: "a@example.com", Password: "secret123"},
		{FullName: "Alice", Email: "not-an-email", Password: "secret123"},
		{FullName: "Alice", Email: "a@example.com", Password: "short"},
	}
	for _, input := range cases {
		_, _, err := svc.Signup(ctx, input)
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
	}
}

func TestValidateToken(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, SignupInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, string(user.ID), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = svc.ValidateToken(token + "tampered")
	assert.Error(t, err)

	// Token signed with a different secret is rejected
	other := NewAuthService(memory.NewUserRepository(), "other-secret", time.Hour, zap.NewNop().Sugar())
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, SignupInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		FullName:          "Alice Jones",
		PreferredLanguage: "de",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", updated.FullName)
	assert.Equal(t, "de", updated.PreferredLanguage)
	assert.Equal(t, "alice@example.com", updated.Email)
}
