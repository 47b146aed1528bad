// Package auth holds the admin authentication policy. The site has one kind
// of privileged user; credentials come from a CredentialStore and successful
// logins are issued a signed session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shareshine/backend/pkg/utils"
)

var (
	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnknownUser is returned by a CredentialStore for missing users.
	ErrUnknownUser = errors.New("unknown user")
)

// Credentials are what the login form submits.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is an authenticated admin session.
type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticator decides whether credentials grant a session.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)
}

// CredentialStore looks up the bcrypt hash for a username.
type CredentialStore interface {
	PasswordHash(ctx context.Context, username string) (string, error)
}

// StaticCredentials is a CredentialStore backed by configuration.
type StaticCredentials map[string]string

// NewStaticCredentials builds a single-user store. If hash is empty the plain
// password is hashed once here.
func NewStaticCredentials(username, hash, password string) (StaticCredentials, error) {
	if hash == "" {
		h, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		hash = h
	} else if err := utils.ValidateHash(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return StaticCredentials{strings.TrimSpace(username): hash}, nil
}

// PasswordHash implements CredentialStore.
func (s StaticCredentials) PasswordHash(_ context.Context, username string) (string, error) {
	h, ok := s[username]
	if !ok {
		return "", ErrUnknownUser
	}
	return h, nil
}

// PasswordAuthenticator checks bcrypt hashes and issues JWT sessions.
type PasswordAuthenticator struct {
	store CredentialStore
	jwt   *JWTService
}

// NewPasswordAuthenticator creates an authenticator.
func NewPasswordAuthenticator(store CredentialStore, jwt *JWTService) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store, jwt: jwt}
}

// Authenticate implements Authenticator.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	username := strings.TrimSpace(creds.Username)
	hash, err := a.store.PasswordHash(ctx, username)
	if errors.Is(err, ErrUnknownUser) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(creds.Password, hash) {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := a.jwt.Generate(username, RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{Username: username, Token: token, ExpiresAt: expiresAt}, nil
}
