package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriklima/internal/types"
)

// fakeClock returns a fixed, advanceable time.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testUser() *types.User {
	return &types.User{
		ID:      "6f1e8c1a-2b3d-4e5f-8a9b-0c1d2e3f4a5b",
		Email:   "juan@example.com",
		IsAdmin: true,
	}
}

func TestTokenService_IssueAndAuthenticate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)}
	svc := NewTokenService(testSecret, time.Hour, "agriklima", clock)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "6f1e8c1a-2b3d-4e5f-8a9b-0c1d2e3f4a5b", actor.ID)
	assert.Equal(t, "juan@example.com", actor.Email)
	assert.True(t, actor.IsAdmin)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)}
	svc := NewTokenService(testSecret, time.Hour, "agriklima", clock)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Hour)

	_, err = svc.Authenticate(context.Background(), token)
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeAuthTokenExpired, appErr.Code)
	assert.Equal(t, 401, appErr.HTTPStatus())
}

func TestTokenService_WrongSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := NewTokenService(testSecret, time.Hour, "agriklima", clock)
	verifier := NewTokenService([]byte("another-secret-another-secret-32"), time.Hour, "agriklima", clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Authenticate(context.Background(), token)
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeAuthTokenInvalid, appErr.Code)
}

func TestTokenService_WrongIssuer(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := NewTokenService(testSecret, time.Hour, "someone-else", clock)
	verifier := NewTokenService(testSecret, time.Hour, "agriklima", clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Authenticate(context.Background(), token)
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeAuthTokenInvalid, appErr.Code)
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, "agriklima", nil)

	_, err := svc.Authenticate(context.Background(), "not.a.jwt")
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeAuthTokenInvalid, appErr.Code)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.NoError(t, hasher.Compare(hash, "correct horse battery staple"))

	err = hasher.Compare(hash, "wrong password")
	require.Error(t, err)
	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeAuthInvalidCreds, appErr.Code)
}
