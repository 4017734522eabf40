package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type memUsers struct {
	users map[string]*model.User
}

var _ repository.UserRepository = (*memUsers)(nil)

func newMemUsers() *memUsers { return &memUsers{users: map[string]*model.User{}} }

func (r *memUsers) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Username] = u
	return nil
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memUsers) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUsers) Update(_ context.Context, u *model.User) error {
	r.users[u.Username] = u
	return nil
}

func (r *memUsers) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Active = active
			return nil
		}
	}
	return errors.New("not found")
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func authConfig() *config.Config {
	return &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 24}
}

func seedUser(t *testing.T, repo *memUsers, username, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{ID: uuid.New(), Username: username, FullName: "Test User", PasswordHash: string(hash), Role: role, Active: true}
	repo.users[username] = u
	return u
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLogin_IssuesTokenPair(t *testing.T) {
	repo := newMemUsers()
	seedUser(t, repo, "dilnoza", "password123", model.RoleAccountant)
	svc := NewAuthService(repo, authConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "dilnoza", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleAccountant, resp.User.Role)
}

func TestLogin_WrongPasswordOrUnknownUser(t *testing.T) {
	repo := newMemUsers()
	seedUser(t, repo, "store1", "correctpass", model.RoleStorekeeper)
	svc := NewAuthService(repo, authConfig())
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "store1", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "anypass123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	repo := newMemUsers()
	u := seedUser(t, repo, "boss", "pass1234", model.RoleAdmin)
	svc := NewAuthService(repo, authConfig())
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "boss", Password: "pass1234"})
	require.NoError(t, err)
	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.Username, resp.User.Username)

	_, err = svc.Refresh(ctx, "this.is.garbage")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(), "role": u.Role, "exp": time.Now().Add(-time.Second).Unix(),
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, signed)
	assert.Error(t, err)
}

func TestUserAdministration(t *testing.T) {
	repo := newMemUsers()
	svc := NewAuthService(repo, authConfig())
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "aziz", FullName: "Aziz K", Password: "securepass", Role: model.RoleStorekeeper,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	id := uuid.MustParse(created.ID)
	updated, err := svc.UpdateUser(ctx, id, dto.UpdateUserRequest{Role: model.RoleAccountant})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAccountant, updated.Role)

	require.NoError(t, svc.SetUserActive(ctx, id, false))
	active, err := svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "aziz", Password: "securepass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "deactivated users cannot log in")

	_, err = svc.UpdateUser(ctx, uuid.New(), dto.UpdateUserRequest{FullName: "Nobody"})
	assert.Error(t, err)
}
