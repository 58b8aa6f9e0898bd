package service

import (
	apperrors "gamezone-be/pkg/errors"
)

// Shorthands for the user-facing rejections the services raise before or
// after touching storage.

func appErrValidation(msg string) error {
	return apperrors.NewValidationError(msg, nil)
}

func appErrDuplicate(msg string) error {
	return apperrors.NewDuplicateError(msg)
}

func appErrAuth(msg string) error {
	return apperrors.NewAuthenticationError(msg)
}

func appErrForbidden(msg string) error {
	return apperrors.NewAuthorizationError(msg)
}

func appErrNotFound(msg string) error {
	return apperrors.NewNotFoundError(msg)
}

func appErrExternal(msg string, internal error) error {
	return apperrors.NewExternalError(msg, internal)
}

func appErrWrite(msg string, internal error) error {
	return apperrors.NewWriteFailureError(msg, internal)
}
