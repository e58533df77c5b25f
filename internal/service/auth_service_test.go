package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository/memory"
)

const testSecret = "test-secret-0123456789"

func newAuthService(t *testing.T) (AuthService, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewAuthService(f.repos.Accounts, testSecret, time.Hour, quietLogger()), f
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "Dana", "  Dana@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", account.Email)
	assert.NotEqual(t, "correct horse", account.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "DANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, account.ID, loggedIn.ID)

	accountID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, accountID)

	_, _, err = svc.Login(ctx, "dana@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RegisterValidationAndConflict(t *testing.T) {
	svc, f := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "not-an-email", "short")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Details, 3)

	_, err = svc.Register(ctx, "Copycat", f.owner.Email, "long enough")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestParseToken_RejectsForeignAndExpiredTokens(t *testing.T) {
	sign := func(secret string, claims TokenClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := TokenClaims{AccountID: "acc-1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	expired := TokenClaims{AccountID: "acc-1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	noSubject := TokenClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}

	id, err := ParseToken(sign(testSecret, valid), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", id)

	for name, token := range map[string]string{
		"other secret": sign("another-secret-0123456", valid),
		"expired":      sign(testSecret, expired),
		"no account":   sign(testSecret, noSubject),
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token, testSecret)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, f := newAuthService(t)
	ctx := context.Background()
	account, err := svc.Register(ctx, "Dana", "dana@example.com", "correct horse")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, account.ID, ProfileUpdate{Name: domain.Some("Dana S."), Password: domain.Some("battery staple")})
	require.NoError(t, err)
	assert.Equal(t, "Dana S.", updated.Name)
	assert.Equal(t, "dana@example.com", updated.Email)

	_, _, err = svc.Login(ctx, "dana@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "dana@example.com", "battery staple")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, account.ID, ProfileUpdate{Email: domain.Some(f.other.Email)})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.UpdateProfile(ctx, account.ID, ProfileUpdate{Name: domain.Null[string]()})
	assert.ErrorIs(t, err, ErrValidation)

	unchanged, err := svc.UpdateProfile(ctx, account.ID, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Dana S.", unchanged.Name)
}

func TestAuthService_DeleteAccountCascades(t *testing.T) {
	repos := memory.NewStore().Repositories()
	ctx := context.Background()
	auth := NewAuthService(repos.Accounts, testSecret, time.Hour, quietLogger())
	logs := NewGymLogService(repos.GymLogs)

	account, err := auth.Register(ctx, "Dana", "dana@example.com", "correct horse")
	require.NoError(t, err)
	log, err := logs.CreateLog(ctx, account.ID, CreateGymLogInput{ExerciseName: "Squat", Sets: 5, Reps: 5, Weight: 100})
	require.NoError(t, err)

	require.NoError(t, auth.DeleteAccount(ctx, account.ID))

	_, err = auth.GetAccount(ctx, account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = repos.GymLogs.GetByID(ctx, log.ID)
	assert.Error(t, err)
	assert.ErrorIs(t, auth.DeleteAccount(ctx, account.ID), ErrAccountNotFound)
}
