package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api/auth/login", nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	return req
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	handler := CORS("http://localhost:5173/, https://kalindhi.example")(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, corsRequest(http.MethodGet, "https://kalindhi.example"))

	assert.Equal(t, "https://kalindhi.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, corsRequest(http.MethodGet, "http://localhost:5173"))
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RejectsOtherOrigin(t *testing.T) {
	handler := CORS("https://kalindhi.example")(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, corsRequest(http.MethodOptions, "https://evil.example"))

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_EmptyListAllowsNothing(t *testing.T) {
	handler := CORS("")(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, corsRequest(http.MethodGet, "https://kalindhi.example"))

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
