package auth

import (
	"context"
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "bookkeeping-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func signClaims(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(userID, "owner@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	owner, err := claims.OwnerID()
	require.NoError(t, err)
	assert.Equal(t, userID, owner)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.RemainingTTL().Seconds(), 5)
}

func TestValidateToken_Failures(t *testing.T) {
	svc := newTestJWTService()
	secret := []byte("test-secret-key-at-least-32-chars")
	now := time.Now()
	userID := uuid.New().String()

	base := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    "bookkeeping-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		}
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", signClaims(t, &Claims{RegisteredClaims: base(), UserID: userID}, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx")), ErrInvalidToken},
		{"wrong algorithm", signClaims(t, &Claims{RegisteredClaims: base(), UserID: userID}, jwt.SigningMethodHS512, secret), ErrInvalidToken},
		{"expired", signClaims(t, &Claims{RegisteredClaims: func() jwt.RegisteredClaims {
			c := base()
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			return c
		}(), UserID: userID}, jwt.SigningMethodHS256, secret), ErrExpiredToken},
		{"not yet valid", signClaims(t, &Claims{RegisteredClaims: func() jwt.RegisteredClaims {
			c := base()
			c.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))
			return c
		}(), UserID: userID}, jwt.SigningMethodHS256, secret), ErrTokenNotYetValid},
		{"wrong issuer", signClaims(t, &Claims{RegisteredClaims: func() jwt.RegisteredClaims {
			c := base()
			c.Issuer = "someone-else"
			return c
		}(), UserID: userID}, jwt.SigningMethodHS256, secret), ErrInvalidToken},
		{"missing user", signClaims(t, &Claims{RegisteredClaims: base()}, jwt.SigningMethodHS256, secret), ErrMissingUserID},
		{"malformed user", signClaims(t, &Claims{RegisteredClaims: base(), UserID: "user-1"}, jwt.SigningMethodHS256, secret), ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClaims_RemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).RemainingTTL())
	expired := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}}
	assert.Zero(t, expired.RemainingTTL())
}

func TestInMemoryRevocationList(t *testing.T) {
	list := NewInMemoryRevocationList()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, list.Revoke(ctx, "jti-ignored", 0))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "jti-ignored")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, list.revoked)
}

func TestRedisRevocationList_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	list := NewRedisRevocationList(client, "books:")
	assert.Equal(t, "books:token:revoked:", list.keyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := list.IsRevoked(ctx, "jti")
	assert.Error(t, err)
	assert.Error(t, list.Revoke(ctx, "jti", time.Minute))
	assert.NoError(t, list.Revoke(ctx, "jti", 0))
}
