package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhive/internal/service/auth"
)

type stubJWTService struct {
	auth.JWTService
	claims map[string]*auth.Claims
	err    error
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if claims, ok := s.claims[tokenString]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

func runMiddleware(t *testing.T, jwtService auth.JWTService, authHeader string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()

	NewAuthMiddleware(jwtService).Authenticate(next).ServeHTTP(w, r)
	return w, captured
}

func TestAuthenticateSetsIdentityInContext(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	companyID := uuid.New()
	svc := &stubJWTService{claims: map[string]*auth.Claims{
		"good": {UserID: userID, CompanyID: &companyID, TokenType: "access"},
	}}

	w, captured := runMiddleware(t, svc, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)

	gotUser, ok := GetUserID(captured)
	require.True(t, ok)
	assert.Equal(t, userID, gotUser)

	gotCompany, ok := GetCompanyID(captured)
	require.True(t, ok)
	assert.Equal(t, companyID, gotCompany)
}

func TestAuthenticateWithoutCompanyClaim(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &stubJWTService{claims: map[string]*auth.Claims{
		"good": {UserID: userID, TokenType: "access"},
	}}

	w, captured := runMiddleware(t, svc, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := GetCompanyID(captured)
	assert.False(t, ok)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	t.Parallel()

	w, captured := runMiddleware(t, &stubJWTService{}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, captured)
	assert.Contains(t, w.Body.String(), "Authorization header required")
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"good", "Basic good", "Bearer"} {
		w, captured := runMiddleware(t, &stubJWTService{}, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Nil(t, captured)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	w, _ := runMiddleware(t, &stubJWTService{err: auth.ErrExpiredToken}, "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestAuthenticateInvalidToken(t *testing.T) {
	t.Parallel()

	w, _ := runMiddleware(t, &stubJWTService{}, "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthenticateWrongTokenType(t *testing.T) {
	t.Parallel()

	w, _ := runMiddleware(t, &stubJWTService{err: auth.ErrWrongTokenType}, "Bearer refresh")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthenticateUnexpectedError(t *testing.T) {
	t.Parallel()

	w, _ := runMiddleware(t, &stubJWTService{err: context.DeadlineExceeded}, "Bearer slow")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication error")
}
