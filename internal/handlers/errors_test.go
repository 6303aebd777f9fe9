package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"app error", apperrors.NotFound("Post not found"), http.StatusNotFound, `{"message":"Post not found"}`},
		{"wrapped app error", apperrors.Internal(errors.New("db down"), "Failed to load feed"), http.StatusInternalServerError, `{"message":"Failed to load feed"}`},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, `{"message":"Method Not Allowed"}`},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, `{"message":"Internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			ErrorHandler(zap.New(core))(tc.err, c)

			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.message, rec.Body.String())
			assert.Equal(t, tc.status >= http.StatusInternalServerError, logs.Len() == 1)
		})
	}
}
