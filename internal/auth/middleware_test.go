package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(testSecret, 7*24*time.Hour, 24*time.Hour)
}

// echoClaims writes the subject and email seen by the downstream handler
var echoClaims = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"sub": claims.Subject, "email": claims.Email})
})

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	tm := newTestTokenManager()
	handler := auth.AuthMiddleware(tm)(echoClaims)

	userToken, err := tm.GenerateUserToken("user-1", "asha@example.com")
	require.NoError(t, err)

	t.Run("valid token attaches identity", func(t *testing.T) {
		rec := serve(handler, "Bearer "+userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "user-1", body["sub"])
		assert.Equal(t, "asha@example.com", body["email"])
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + userToken, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"tampered token", "Bearer " + userToken + "x", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewTokenManager("a-completely-different-secret-value!!", time.Hour, time.Hour)
		foreign, err := other.GenerateUserToken("user-1", "asha@example.com")
		require.NoError(t, err)

		rec := serve(handler, "Bearer "+foreign)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := auth.NewTokenManager(testSecret, -time.Minute, -time.Minute)
		expired, err := shortLived.GenerateUserToken("user-1", "asha@example.com")
		require.NoError(t, err)

		rec := serve(handler, "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", errorMessage(t, rec))
	})
}

func TestRequireAdmin(t *testing.T) {
	tm := newTestTokenManager()
	handler := auth.AuthMiddleware(tm)(auth.RequireAdmin(echoClaims))

	t.Run("user token is forbidden", func(t *testing.T) {
		token, err := tm.GenerateUserToken("user-1", "asha@example.com")
		require.NoError(t, err)

		rec := serve(handler, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin token passes", func(t *testing.T) {
		token, err := tm.GenerateAdminToken("admin-1", "ops@example.com")
		require.NoError(t, err)

		rec := serve(handler, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no token is unauthorized", func(t *testing.T) {
		rec := serve(handler, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireMainAdmin(t *testing.T) {
	tm := newTestTokenManager()
	chain := func(mainEmail string) http.Handler {
		return auth.AuthMiddleware(tm)(auth.RequireAdmin(auth.RequireMainAdmin(mainEmail)(echoClaims)))
	}

	mainToken, err := tm.GenerateAdminToken("admin-1", "owner@example.com")
	require.NoError(t, err)
	otherToken, err := tm.GenerateAdminToken("admin-2", "ops@example.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(chain("owner@example.com"), "Bearer "+mainToken).Code)
	assert.Equal(t, http.StatusForbidden, serve(chain("owner@example.com"), "Bearer "+otherToken).Code)
	assert.Equal(t, http.StatusForbidden, serve(chain("Owner@example.com"), "Bearer "+mainToken).Code, "match is exact")
	assert.Equal(t, http.StatusForbidden, serve(chain(""), "Bearer "+mainToken).Code)
}

func TestIsMainAdmin_RequiresAdminMarker(t *testing.T) {
	claims := &models.TokenClaims{Email: "owner@example.com"}
	assert.False(t, auth.IsMainAdmin(claims, "owner@example.com"))

	claims.IsAdmin = true
	assert.True(t, auth.IsMainAdmin(claims, "owner@example.com"))
	assert.False(t, auth.IsMainAdmin(nil, "owner@example.com"))
}
