package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agriklima/internal/types"
)

// Claims are the JWT claims embedded in an AgriKlima access token.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Clock abstracts time.Now for deterministic token tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock implementation.
type RealClock struct{}

// Now returns the current wall-clock time.
func (RealClock) Now() time.Time { return time.Now() }

// TokenService issues and verifies HS256-signed access tokens. It
// implements the core.Authenticator interface.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  Clock
}

// NewTokenService creates a TokenService. A nil clock defaults to the real
// clock.
func NewTokenService(secret []byte, ttl time.Duration, issuer string, clock Clock) *TokenService {
	if clock == nil {
		clock = RealClock{}
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		issuer: issuer,
		clock:  clock,
	}
}

// Issue creates a signed access token for the given user.
func (s *TokenService) Issue(user *types.User) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to sign token", err)
	}
	return signed, nil
}

// Authenticate verifies a bearer token and resolves it to an Actor.
// Expired tokens map to auth_token_expired; any other verification failure
// maps to auth_token_invalid.
func (s *TokenService) Authenticate(_ context.Context, tokenString string) (types.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return types.Actor{}, types.NewAppError(types.ErrCodeAuthTokenExpired, "token has expired", err)
		}
		return types.Actor{}, types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", err)
	}
	if !token.Valid || claims.Subject == "" {
		return types.Actor{}, types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil)
	}

	return types.Actor{
		ID:      claims.Subject,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, nil
}
