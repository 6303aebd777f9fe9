package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories/memstore"
	"github.com/anonto42/instaclone/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("bad token")
}

func firebaseToken(uid, email, name string) *auth.Token {
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": email, "name": name}}
}

const secret = "handler-secret"

func newAuthServer(store *memstore.Store, verifier IDTokenVerifier) *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	NewAuthHandler(store, verifier, secret, time.Hour, zap.NewNop()).RegisterAuthRoutes(e.Group("/api/auth"))
	return e
}

func firebaseLogin(t *testing.T, e *echo.Echo, idToken string) (int, *models.JwtCustomClaims) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/firebase-login", strings.NewReader(`{"id_token":"`+idToken+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}

	var body struct {
		Data authResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	claims, err := middleware.ParseToken(body.Data.Token, secret)
	require.NoError(t, err)
	assert.Equal(t, body.Data.User.ID, claims.UserID)
	return rec.Code, claims
}

func TestFirebaseLoginCreatesThenReusesAccount(t *testing.T) {
	store := memstore.New()
	e := newAuthServer(store, fakeVerifier{
		"tok": firebaseToken("uid-1", "Carol.Smith@Example.com", "Carol Smith"),
	})

	code, first := firebaseLogin(t, e, "tok")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "carolsmith", first.Username)

	user, err := store.GetUserByID(context.Background(), first.UserID)
	require.NoError(t, err)
	assert.Equal(t, "carol.smith@example.com", user.Email)
	require.NotNil(t, user.FirebaseUID)
	assert.Equal(t, "uid-1", *user.FirebaseUID)

	_, second := firebaseLogin(t, e, "tok")
	assert.Equal(t, first.UserID, second.UserID)
}

func TestFirebaseLoginLinksExistingEmail(t *testing.T) {
	store := memstore.New()
	existing := &models.User{Username: "dave", Email: "dave@example.com", Password: "hash"}
	require.NoError(t, store.CreateUser(context.Background(), existing))

	e := newAuthServer(store, fakeVerifier{"tok": firebaseToken("uid-2", "dave@example.com", "")})

	code, claims := firebaseLogin(t, e, "tok")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, existing.ID, claims.UserID)

	linked, err := store.GetUserByFirebaseUID(context.Background(), "uid-2")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
}

func TestFirebaseLoginPicksFreeUsername(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{Username: "erin", Email: "other@example.com"}))

	e := newAuthServer(store, fakeVerifier{"tok": firebaseToken("uid-3", "erin@example.com", "")})

	code, claims := firebaseLogin(t, e, "tok")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(claims.Username, "erin"))
	assert.NotEqual(t, "erin", claims.Username)
}

func TestFirebaseLoginRejectsBadToken(t *testing.T) {
	e := newAuthServer(memstore.New(), fakeVerifier{})

	code, _ := firebaseLogin(t, e, "forged")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUsernameFrom(t *testing.T) {
	assert.Equal(t, "jos", usernameFrom("José"))
	assert.Equal(t, "ab12", usernameFrom("a.b-1_2"))
	assert.Equal(t, "", usernameFrom("!!"))
}
