package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareshine/backend/pkg/utils"
)

func newTestAuthenticator(t *testing.T) (*PasswordAuthenticator, *JWTService) {
	t.Helper()
	creds, err := NewStaticCredentials("admin", "", "s3cret")
	require.NoError(t, err)
	jwtSvc := NewJWTService("test-secret", 1)
	return NewPasswordAuthenticator(creds, jwtSvc), jwtSvc
}

func TestAuthenticate_Success(t *testing.T) {
	a, jwtSvc := newTestAuthenticator(t)

	session, err := a.Authenticate(context.Background(), Credentials{Username: " admin ", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)
	assert.NotEmpty(t, session.Token)

	claims, err := jwtSvc.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	_, err := a.Authenticate(context.Background(), Credentials{Username: "admin", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	_, err := a.Authenticate(context.Background(), Credentials{Username: "root", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type failingStore struct{}

func (failingStore) PasswordHash(context.Context, string) (string, error) {
	return "", errors.New("credential backend down")
}

func TestAuthenticate_StoreFailureIsNotInvalidCredentials(t *testing.T) {
	a := NewPasswordAuthenticator(failingStore{}, NewJWTService("x", 1))
	_, err := a.Authenticate(context.Background(), Credentials{Username: "admin", Password: "s3cret"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewStaticCredentials_UsesProvidedHash(t *testing.T) {
	hash, err := utils.HashPassword("pw")
	require.NoError(t, err)
	creds, err := NewStaticCredentials("admin", hash, "ignored")
	require.NoError(t, err)

	got, err := creds.PasswordHash(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestNewStaticCredentials_RejectsMalformedHash(t *testing.T) {
	_, err := NewStaticCredentials("admin", "not-a-hash", "")
	assert.ErrorContains(t, err, "admin password hash")
}
