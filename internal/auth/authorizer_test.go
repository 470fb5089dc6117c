package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// profileStub отдаёт профили из карты
type profileStub struct {
	profiles map[string]*models.Profile
	err      error
}

func (s profileStub) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func newStub() profileStub {
	return profileStub{profiles: map[string]*models.Profile{
		"admin-1": {UserID: "admin-1", Role: models.RoleAdmin},
		"user-1":  {UserID: "user-1", Role: models.RoleUser},
	}}
}

func tokenCtx(t *testing.T, secret, userID string, ttl time.Duration) context.Context {
	t.Helper()
	token, err := auth.IssueToken(secret, userID, ttl)
	require.NoError(t, err)
	return auth.WithToken(context.Background(), token)
}

func TestRequireAdmin(t *testing.T) {
	a := auth.NewAuthorizer(auth.Config{JWTSecret: testSecret, StoreConfigured: true}, newStub(), nil)

	tests := []struct {
		name    string
		ctx     context.Context
		wantErr bool
	}{
		{"администратор", tokenCtx(t, testSecret, "admin-1", time.Hour), false},
		{"обычный пользователь", tokenCtx(t, testSecret, "user-1", time.Hour), true},
		{"нет профиля", tokenCtx(t, testSecret, "ghost", time.Hour), true},
		{"чужой секрет", tokenCtx(t, "other-secret", "admin-1", time.Hour), true},
		{"истёкший токен", tokenCtx(t, testSecret, "admin-1", -time.Minute), true},
		{"без токена", context.Background(), true},
		{"мусор вместо токена", auth.WithToken(context.Background(), "not-a-jwt"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := a.RequireAdmin(tt.ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrNotAuthorized)
				assert.Nil(t, profile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin-1", profile.UserID)
		})
	}
}

// TestRequireAdmin_StoreFailure проверяет, что сбой хранилища закрывает доступ
func TestRequireAdmin_StoreFailure(t *testing.T) {
	stub := newStub()
	stub.err = errors.New("connection refused")
	a := auth.NewAuthorizer(auth.Config{JWTSecret: testSecret, StoreConfigured: true}, stub, nil)

	_, err := a.RequireAdmin(tokenCtx(t, testSecret, "admin-1", time.Hour))
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
}

// TestRequireAdmin_DevBypass проверяет обход только при ненастроенном хранилище
func TestRequireAdmin_DevBypass(t *testing.T) {
	bypass := auth.NewAuthorizer(auth.Config{DevBypass: true, StoreConfigured: false}, newStub(), nil)
	profile, err := bypass.RequireAdmin(context.Background())
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin())

	ignored := auth.NewAuthorizer(auth.Config{DevBypass: true, StoreConfigured: true}, newStub(), nil)
	_, err = ignored.RequireAdmin(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)

	// без явного флага ненастроенное хранилище доступа не даёт
	closed := auth.NewAuthorizer(auth.Config{StoreConfigured: false}, newStub(), nil)
	_, err = closed.RequireAdmin(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc", auth.ExtractTokenFromBearer("Bearer abc"))
	assert.Equal(t, "abc", auth.ExtractTokenFromBearer("bearer abc"))
	assert.Equal(t, "", auth.ExtractTokenFromBearer("Basic abc"))
	assert.Equal(t, "", auth.ExtractTokenFromBearer("Bearer "))
}
