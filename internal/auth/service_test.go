package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/dmarrero/stockpilot-backend/pkg/auth"
	"github.com/dmarrero/stockpilot-backend/pkg/config"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	created []*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, assert.AnError
	}
	user.ID = uuid.New()
	if f.byEmail == nil {
		f.byEmail = map[string]*models.User{}
	}
	f.byEmail[user.Email] = user
	f.created = append(f.created, user)
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type fakeSessionManager struct {
	revoked []string
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh-" + accessID, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "new-access-id", "new-refresh-token", nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16}
}

func newTestService(t *testing.T, repo *fakeUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: &fakeSessionManager{},
		JWTConfig:      config.JWTConfig{Secret: "secret", Issuer: "stockpilot", ExpirationMinutes: 15},
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterThenLogin(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "Owner@Example.com",
		Password: "super-secret-pw",
		Name:     "Dana",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.Equal(t, "owner@example.com", reg.User.Email)

	login, err := svc.Login(ctx, LoginRequest{Email: "owner@example.com", Password: "super-secret-pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "super-secret-pw", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t, &fakeUserRepo{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@b.com", Password: "pw"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	hash, err := security.HashPassword("super-secret-pw", testPasswordConfig())
	require.NoError(t, err)
	repo := &fakeUserRepo{byEmail: map[string]*models.User{
		"sleepy@b.com": {ID: uuid.New(), Email: "sleepy@b.com", PasswordHash: hash, IsActive: false},
	}}
	svc := newTestService(t, repo)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "sleepy@b.com", Password: "super-secret-pw"})
	require.Error(t, err)
}

func TestRefreshMintsNewPair(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "stockpilot", ExpirationMinutes: 15}
	svc, err := NewService(ServiceParams{
		UserRepo:       &fakeUserRepo{},
		SessionManager: &fakeSessionManager{},
		JWTConfig:      jwtCfg,
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	access, err := pkgAuth.MintAccessToken(jwtCfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    "old-access-id",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: access, RefreshToken: "whatever"})
	require.NoError(t, err)
	assert.Equal(t, "new-refresh-token", pair.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(jwtCfg, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "new-access-id", claims.ID)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &fakeUserRepo{},
		SessionManager: sessions,
		JWTConfig:      config.JWTConfig{Secret: "secret", Issuer: "stockpilot", ExpirationMinutes: 15},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "access-1"))
	assert.Equal(t, []string{"access-1"}, sessions.revoked)
}
