package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	jwtinfra "github.com/quiz-kiosk-api/internal/infrastructure/jwt"
)

type stubVerifier struct {
	claims *jwtinfra.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*jwtinfra.Claims, error) { return s.claims, s.err }

func protected(t *testing.T, v TokenVerifier) http.Handler {
	t.Helper()
	return AdminAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "admin", claims.Role)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	protected(t, stubVerifier{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	protected(t, stubVerifier{err: errors.New("expired")}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_WrongRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	protected(t, stubVerifier{claims: &jwtinfra.Claims{Role: "viewer"}}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuth_OK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	protected(t, stubVerifier{claims: &jwtinfra.Claims{Role: "admin"}}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminDisabled(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
