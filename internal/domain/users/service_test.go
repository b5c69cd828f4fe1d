package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventboard/server/internal/auth"
)

type stubRepository struct {
	users    map[string]*User
	lookupFn func(ctx context.Context, username string) (*User, error)
	created  []CreateParams
}

func (s *stubRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	if s.lookupFn != nil {
		return s.lookupFn(ctx, username)
	}
	user, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *stubRepository) Create(_ context.Context, params CreateParams) (*User, error) {
	if _, ok := s.users[params.Username]; ok {
		return nil, ErrUsernameTaken
	}
	s.created = append(s.created, params)
	user := &User{ID: "generated-id", Username: params.Username, PasswordHash: params.PasswordHash}
	if s.users == nil {
		s.users = map[string]*User{}
	}
	s.users[params.Username] = user
	return user, nil
}

func newRepoWithUser(t *testing.T, username, password string) *stubRepository {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &stubRepository{users: map[string]*User{
		username: {ID: "4b7c2b8e-0d55-4a49-9c1e-2f2f2b7f5a10", Username: username, PasswordHash: hash},
	}}
}

func TestLoginRoundTrip(t *testing.T) {
	manager := auth.NewJWTManager("secret")
	svc := NewService(newRepoWithUser(t, "alice", "pw"), manager)

	token, err := svc.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "4b7c2b8e-0d55-4a49-9c1e-2f2f2b7f5a10", claims.UserID)
}

func TestLoginConflatesUnknownUserAndWrongPassword(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "alice", "pw"), auth.NewJWTManager("secret"))

	_, unknownErr := svc.Login(context.Background(), "bob", "pw")
	_, wrongErr := svc.Login(context.Background(), "alice", "nope")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginMissingSecretAfterCredentialCheck(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "alice", "pw"), auth.NewJWTManager(""))

	_, err := svc.Login(context.Background(), "alice", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestLoginStoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := NewService(&stubRepository{lookupFn: func(context.Context, string) (*User, error) {
		return nil, storeErr
	}}, auth.NewJWTManager("secret"))

	_, err := svc.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, storeErr)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, auth.NewJWTManager("secret"))

	user, err := svc.Create(context.Background(), "  carol ", "pw")
	require.NoError(t, err)
	require.Equal(t, "carol", user.Username)
	require.Len(t, repo.created, 1)
	require.NotEqual(t, "pw", repo.created[0].PasswordHash)
	require.True(t, auth.CheckPassword(repo.created[0].PasswordHash, "pw"))
}

func TestCreateRequiresUsernameAndPassword(t *testing.T) {
	svc := NewService(&stubRepository{}, auth.NewJWTManager("secret"))

	_, err := svc.Create(context.Background(), " ", "pw")
	require.Error(t, err)
	_, err = svc.Create(context.Background(), "dave", "")
	require.Error(t, err)
}

func TestEnsureUser(t *testing.T) {
	repo := newRepoWithUser(t, "alice", "pw")
	svc := NewService(repo, auth.NewJWTManager("secret"))

	created, err := svc.EnsureUser(context.Background(), "alice", "other")
	require.NoError(t, err)
	require.False(t, created)
	require.Empty(t, repo.created)

	created, err = svc.EnsureUser(context.Background(), "erin", "pw")
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, repo.created, 1)
}
