package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventboard/server/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenIssuer mints a bearer token for a user id.
type TokenIssuer interface {
	Generate(userID string) (string, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login checks the credentials and returns a signed token. Unknown usernames
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.BurnPasswordCheck(password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Create provisions a login account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, CreateParams{Username: username, PasswordHash: hash})
}

// EnsureUser creates the account unless the username already exists.
func (s *Service) EnsureUser(ctx context.Context, username, password string) (created bool, err error) {
	_, err = s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, fmt.Errorf("lookup user: %w", err)
	}

	if _, err := s.Create(ctx, username, password); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
