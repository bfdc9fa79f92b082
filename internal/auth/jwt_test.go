package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isandoval/rbac-admin-be/internal/models"
)

func signedTokenFor(t *testing.T, role string) string {
	t.Helper()
	Init("test-signing-key")
	token, err := GenerateJWT(models.User{ID: "u1", Name: "Jo", Email: "jo@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func TestGenerateAndValidateJWT(t *testing.T) {
	token := signedTokenFor(t, models.RoleAdmin)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	Init("test-signing-key")
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsTokenSignedWithOtherKey(t *testing.T) {
	Init("key-one")
	token, err := GenerateJWT(models.User{ID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)

	Init("key-two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTFailsClosedWithoutKey(t *testing.T) {
	Init("")

	_, err := GenerateJWT(models.User{ID: "u1", Role: models.RoleAdmin})
	assert.Error(t, err)

	// A token forged with an empty HMAC key must not verify either.
	_, err = ValidateJWT("eyJhbGciOiJIUzI1NiJ9.e30.")
	assert.Error(t, err)
}

func protectedProbe(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "u1", claims.UserID)
		reached = true
	})
	return JWTMiddleware()(inner), &reached
}

func TestJWTMiddlewareAcceptsBearerHeader(t *testing.T) {
	handler, reached := protectedProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedTokenFor(t, models.RoleUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestJWTMiddlewareFallsBackToCookie(t *testing.T) {
	handler, reached := protectedProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signedTokenFor(t, models.RoleUser)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	handler, reached := protectedProbe(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestRequireAdminBlocksNonAdmins(t *testing.T) {
	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	handler := JWTMiddleware()(RequireAdmin(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedTokenFor(t, models.RoleUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedTokenFor(t, models.RoleAdmin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
