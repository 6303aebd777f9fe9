package services

import (
	"errors"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/repositories"
)

func postLookupError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound("Post not found")
	case errors.Is(err, repositories.ErrInvalidID):
		return apperrors.InvalidInput("Invalid post ID")
	}
	return apperrors.Internal(err, "Failed to load post")
}

func userLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("User not found")
	}
	return apperrors.Internal(err, "Failed to load user")
}

// passThrough keeps AppErrors raised inside a transaction and wraps anything
// else as an internal error.
func passThrough(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Internal(err, message)
}
