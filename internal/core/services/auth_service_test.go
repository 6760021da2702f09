package services

import (
	"context"
	"testing"
	"time"

	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/config"
	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T, db *gorm.DB) (*AuthService, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	svc := NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewMemberRepository(db),
		cfg,
	)
	return svc, cfg
}

func TestAuthRegisterClaimsMember(t *testing.T) {
	db := newTestDB(t)
	svc, cfg := newAuthService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterInput{
		MemberID: m.ID,
		Username: "ram",
		Email:    "ram@example.org",
		Password: "sekret123",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User.MemberID)
	assert.Equal(t, m.ID, *result.User.MemberID)
	assert.Equal(t, string(domain.RoleMember), result.User.Role)

	// The access token carries the member link for the portal routes.
	claims, err := jwt.ValidateAccessToken(result.AccessToken, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, m.ID, claims.MemberID)
	assert.Equal(t, "MEMBER", claims.Role)

	// One portal account per member.
	_, err = svc.Register(ctx, &RegisterInput{
		MemberID: m.ID,
		Username: "ram2",
		Email:    "ram2@example.org",
		Password: "sekret123",
	})
	assert.ErrorIs(t, err, ErrMemberAlreadyUsed)
}

func TestAuthRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		MemberID: 9999, Username: "x", Email: "x@example.org", Password: "sekret123",
	})
	assert.ErrorIs(t, err, ErrMemberNotFoundAuth)

	// Needs a digit and at least 8 characters.
	_, err = svc.Register(ctx, &RegisterInput{
		MemberID: m.ID, Username: "ram", Email: "ram@example.org", Password: "password",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthLoginAndRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		MemberID: m.ID, Username: "ram", Email: "ram@example.org", Password: "sekret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginInput{Username: "ram", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, &LoginInput{Username: "ram", Password: "sekret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated-out token is revoked and cannot be replayed.
	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthLogoutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterInput{
		MemberID: m.ID, Username: "ram", Email: "ram@example.org", Password: "sekret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.RefreshToken))

	_, err = svc.RefreshToken(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
