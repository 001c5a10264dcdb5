package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/seguro/internal/auth"
	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/server/middleware"
)

const testJWTSecret = "test-jwt-secret-for-middleware-tests"

var (
	adminID    = domain.Identity{Username: "root", Role: domain.RoleAdmin}
	standardID = domain.Identity{Username: "ana", Role: domain.RoleStandard}
)

// okHandler is a simple handler that writes 200 OK.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// identityHandler captures the identity set by middleware.
type identityHandler struct {
	id     domain.Identity
	called bool
}

func (h *identityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.id, _ = middleware.IdentityFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func withIdentity(r *http.Request, id domain.Identity) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), id))
}

func newAuthenticator() *auth.Service {
	return auth.NewService(nil, testJWTSecret, 15*time.Minute, time.Hour)
}

// ===========================================================================
// 1. Context helpers
// ===========================================================================

func TestIdentityFromContext(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		got, ok := middleware.IdentityFromContext(middleware.WithIdentity(context.Background(), adminID))
		require.True(t, ok)
		assert.Equal(t, adminID, got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		got, ok := middleware.IdentityFromContext(context.Background())
		assert.False(t, ok)
		assert.Equal(t, domain.Identity{}, got)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		ctx := context.WithValue(context.Background(), middleware.ContextKeyIdentity, "root")
		_, ok := middleware.IdentityFromContext(ctx)
		assert.False(t, ok)
	})
}

// ===========================================================================
// 2. Auth middleware
// ===========================================================================

func TestAuth_ValidToken_PopulatesContext(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testJWTSecret, standardID, 15*time.Minute)
	require.NoError(t, err)

	capture := &identityHandler{}
	handler := middleware.Auth(newAuthenticator())(capture)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.True(t, capture.called, "inner handler must be called")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, standardID, capture.id)
}

func TestAuth_Rejections(t *testing.T) {
	t.Parallel()

	expired, err := auth.IssueAccessToken(testJWTSecret, standardID, -time.Second)
	require.NoError(t, err)
	wrongSecret, err := auth.IssueAccessToken("correct-secret", standardID, time.Minute)
	require.NoError(t, err)
	refresh, err := auth.IssueRefreshToken(testJWTSecret, standardID, time.Minute)
	require.NoError(t, err)
	badRole, err := auth.IssueAccessToken(testJWTSecret, domain.Identity{Username: "x", Role: "owner"}, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "no header", authHeader: ""},
		{name: "invalid token", authHeader: "Bearer totally.invalid.token"},
		{name: "expired", authHeader: "Bearer " + expired},
		{name: "wrong secret", authHeader: "Bearer " + wrongSecret},
		{name: "refresh token", authHeader: "Bearer " + refresh},
		{name: "unknown role", authHeader: "Bearer " + badRole},
		{name: "basic scheme", authHeader: "Basic dXNlcjpwYXNz"},
		{name: "bearer without token", authHeader: "Bearer "},
	}

	handler := middleware.Auth(newAuthenticator())(okHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Unauthorized")
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuth_BearerFormat(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testJWTSecret, standardID, 15*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "uppercase Bearer", authHeader: "Bearer " + token},
		{name: "lowercase bearer", authHeader: "bearer " + token},
		{name: "mixed case BEARER", authHeader: "BEARER " + token},
	}

	handler := middleware.Auth(newAuthenticator())(okHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set("Authorization", tt.authHeader)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

// ===========================================================================
// 3. RequireRole middleware
// ===========================================================================

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		allowed    []domain.Role
		id         *domain.Identity
		wantStatus int
	}{
		{name: "admin allowed for admin-only", allowed: []domain.Role{domain.RoleAdmin}, id: &adminID, wantStatus: http.StatusOK},
		{name: "standard blocked for admin-only", allowed: []domain.Role{domain.RoleAdmin}, id: &standardID, wantStatus: http.StatusForbidden},
		{name: "standard allowed when listed", allowed: []domain.Role{domain.RoleAdmin, domain.RoleStandard}, id: &standardID, wantStatus: http.StatusOK},
		{name: "no identity", allowed: []domain.Role{domain.RoleAdmin}, wantStatus: http.StatusUnauthorized},
		{name: "anonymous identity", allowed: []domain.Role{domain.RoleAdmin}, id: &domain.Identity{Role: domain.RoleAdmin}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.RequireRole(tt.allowed...)(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.id != nil {
				req = withIdentity(req, *tt.id)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", http.NoBody), standardID)
	rec := httptest.NewRecorder()

	middleware.RequireAdmin()(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permissions")
}

// ===========================================================================
// 4. Rate limiting
// ===========================================================================

func TestRateLimit_NoIdentity_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(t.Context(), 0.001, 1)(okHandler)

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	// Very low rate (effectively zero refill during the test) with burst of 2.
	handler := middleware.RateLimit(t.Context(), 0.001, 2)(okHandler)

	for i := range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", http.NoBody), standardID))
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", http.NoBody), standardID))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimit_IndependentPerUser(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(t.Context(), 0.001, 1)(okHandler)

	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, withIdentity(httptest.NewRequest(http.MethodGet, "/", http.NoBody), standardID))
	require.Equal(t, http.StatusOK, recA.Code)

	recA2 := httptest.NewRecorder()
	handler.ServeHTTP(recA2, withIdentity(httptest.NewRequest(http.MethodGet, "/", http.NoBody), standardID))
	assert.Equal(t, http.StatusTooManyRequests, recA2.Code)

	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, withIdentity(httptest.NewRequest(http.MethodGet, "/", http.NoBody), adminID))
	assert.Equal(t, http.StatusOK, recB.Code)
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(t.Context(), 0.001, 1)(okHandler)

	request := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", http.NoBody)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5001"), "port does not matter")
	assert.Equal(t, http.StatusOK, request("10.0.0.2:5000"))
}
