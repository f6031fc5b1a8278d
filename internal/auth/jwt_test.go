package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	issued := Identity{
		UserID:      "user-42",
		Email:       "asel@example.com",
		DisplayName: "Asel",
		Role:        RoleUser,
	}

	token, err := GenerateToken(testSecret, issued, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, issued.UserID, got.UserID)
	assert.Equal(t, issued.Email, got.Email)
	assert.Equal(t, issued.Role, got.Role)
	assert.False(t, got.IsAdmin())
}

func TestValidateTokenFailures(t *testing.T) {
	token, err := GenerateToken(testSecret, Identity{UserID: "user-1", Role: RoleUser}, time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ValidateToken([]byte("other-secret"), token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ValidateToken(testSecret, "not.a.token")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := GenerateToken(testSecret, Identity{UserID: "user-1"}, -time.Minute)
		require.NoError(t, err)
		_, err = ValidateToken(testSecret, expired)
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	var seen *Identity
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := GenerateToken(testSecret, Identity{UserID: "user-7", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)

	t.Run("bearer header accepted", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "user-7", seen.UserID)
	})

	t.Run("query token accepted for websocket clients", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/ws/orders?token="+token, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "a-1", Role: RoleAdmin}))
		rec := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("plain user forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "u-1", Role: RoleUser}))
		rec := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no identity forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		rec := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
