package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"it-asset-dashboard/internal/config"
	domainUser "it-asset-dashboard/internal/domain/user"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"
)

type userStore struct {
	mu    sync.Mutex
	users []domainUser.User
}

func (s *userStore) Create(_ context.Context, u *domainUser.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return domainUser.ErrUserAlreadyExists
		}
	}
	u.ID = uint(len(s.users) + 1)
	s.users = append(s.users, *u)
	return nil
}

func (s *userStore) GetByUsername(_ context.Context, username string) (*domainUser.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (s *userStore) GetByID(_ context.Context, id uint) (*domainUser.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (s *userStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

const testSecret = "test-secret"

func newTestService(t *testing.T) (*Service, *userStore) {
	t.Helper()
	store := &userStore{}
	return NewService(store, config.JWTConfig{Secret: testSecret, ExpiryHours: 1}), store
}

func TestEnsureAdminAndLogin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "Sup3rSecret"))
	require.NoError(t, svc.EnsureAdmin(ctx, "other", "Sup3rSecret"))
	require.Len(t, store.users, 1)
	assert.Equal(t, domainUser.RoleAdmin, store.users[0].Role)

	resp, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Username)

	claims, err := utils.ValidateToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, domainUser.RoleAdmin, claims.Role)
	assert.Equal(t, claims.ExpiresAt.Unix(), resp.ExpiresAt)

	profile, err := svc.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.Username)
}

func TestEnsureAdminRejectsWeakPassword(t *testing.T) {
	svc, store := newTestService(t)

	assert.Error(t, svc.EnsureAdmin(context.Background(), "admin", "short"))
	assert.Empty(t, store.users)
	assert.NoError(t, svc.EnsureAdmin(context.Background(), "", "ignored"))
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "Sup3rSecret"))

	_, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Username: "ghost", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Username: "admin"})
	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeValidation, appErr.Code)

	_, err = svc.GetProfile(ctx, 42)
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}
