package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.JwtCustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() *models.JwtCustomClaims {
	return &models.JwtCustomClaims{
		UserID:   7,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func run(t *testing.T, header string) (*models.JwtCustomClaims, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *models.JwtCustomClaims
	err := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		got = c.Get(ContextKeyUser).(*models.JwtCustomClaims)
		return nil
	})(c)
	return got, err
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	claims, err := run(t, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage":        "Bearer not.a.token",
		"wrong secret":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"expired":        "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"no user id":     "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), &models.JwtCustomClaims{}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, header)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized), "got %v", err)
		})
	}
}
