package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/session-gateway/backend/internal/config"
	"github.com/ayush/session-gateway/backend/internal/models"
	"github.com/ayush/session-gateway/backend/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator decides whether a login attempt may open a session.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// UserLookup is the read side of the user store.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Placeholder accepts every login. It keeps the historical behaviour of the
// service, where login never checked credentials.
type Placeholder struct{}

func (Placeholder) Authenticate(context.Context, string, string) error { return nil }

// PasswordAuthenticator checks the password against the stored bcrypt hash.
type PasswordAuthenticator struct {
	users UserLookup
}

func NewPasswordAuthenticator(users UserLookup) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) error {
	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// NewAuthenticator picks the implementation for an AUTH_MODE value.
func NewAuthenticator(mode string, users UserLookup) (Authenticator, error) {
	switch mode {
	case config.AuthModePlaceholder, "":
		return Placeholder{}, nil
	case config.AuthModePassword:
		return NewPasswordAuthenticator(users), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

// HashPassword hashes a plain password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
