package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/auth"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/config"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "test-issuer",
		AccessTokenExpiration: expiration,
	})
}

func newAuthRouter(cfg AuthConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), OwnerAuth(cfg))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/test", func(c *gin.Context) {
		owner, ok := GetOwnerID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"owner_id": owner.String()})
	})
	return router
}

func doAuth(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestOwnerAuth_ValidToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	owner := uuid.New()
	token, _, err := jwtService.GenerateToken(owner, "owner@example.com")
	require.NoError(t, err)

	rec := doAuth(newAuthRouter(AuthConfig{JWTService: jwtService}), map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), owner.String())
}

func TestOwnerAuth_Rejections(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Issuer: "test-issuer", AccessTokenExpiration: time.Minute})
	forged, _, err := other.GenerateToken(uuid.New(), "")
	require.NoError(t, err)
	expiredService := newTestJWTService(-time.Minute)
	expired, _, err := expiredService.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		code    string
	}{
		{"missing header", nil, dto.ErrCodeUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic abc"}, dto.ErrCodeTokenInvalid},
		{"forged signature", map[string]string{"Authorization": "Bearer " + forged}, dto.ErrCodeTokenInvalid},
		{"expired", map[string]string{"Authorization": "Bearer " + expired}, dto.ErrCodeTokenExpired},
		{"owner header without dev mode", map[string]string{OwnerIDHeader: uuid.NewString()}, dto.ErrCodeUnauthorized},
	}

	router := newAuthRouter(AuthConfig{JWTService: jwtService})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuth(router, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestOwnerAuth_RevokedToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	revocations := auth.NewInMemoryRevocationList()
	token, _, err := jwtService.GenerateToken(uuid.New(), "")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	router := newAuthRouter(AuthConfig{JWTService: jwtService, Revocations: revocations})
	headers := map[string]string{"Authorization": "Bearer " + token}
	assert.Equal(t, http.StatusOK, doAuth(router, headers).Code)

	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.RemainingTTL()))
	rec := doAuth(router, headers)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, rec))
}

func TestOwnerAuth_DevelopmentHeader(t *testing.T) {
	router := newAuthRouter(AuthConfig{JWTService: newTestJWTService(time.Minute), AllowOwnerHeader: true})
	owner := uuid.New()

	rec := doAuth(router, map[string]string{OwnerIDHeader: owner.String()})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), owner.String())

	rec = doAuth(router, map[string]string{OwnerIDHeader: "not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnerAuth_SkipPaths(t *testing.T) {
	router := newAuthRouter(AuthConfig{JWTService: newTestJWTService(time.Minute), SkipPaths: []string{"/health"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
