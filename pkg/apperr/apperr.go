// Package apperr builds the rich errors handlers return and maps them onto
// HTTP statuses.
package apperr

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeUpstream marks internal errors whose message is safe to show.
	TextCodeUpstream = "UPSTREAM_ERROR"
	// TextCodeInternal tags wrapped storage and programming errors.
	TextCodeInternal = "INTERNAL"

	// InternalMessage replaces the message of every non-public failure.
	InternalMessage = "Internal server error"
	// TimeoutMessage is returned when the request context expires.
	TimeoutMessage = "Request timeout"
)

// Validation is a 400 with a client-facing message.
func Validation(msg, textCode string) error {
	return errors.New(msg, errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithTextCode(textCode)
}

// Unauthorized is a 401.
func Unauthorized(msg, textCode string) error {
	return errors.New(msg, errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCode)
}

// Forbidden is a 403.
func Forbidden(msg, textCode string) error {
	return errors.New(msg, errors.CategoryAuthz).
		WithCode(errors.CodeForbidden).
		WithTextCode(textCode)
}

// NotFound is a 404.
func NotFound(msg, textCode string) error {
	return errors.New(msg, errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode(textCode)
}

// Internal wraps a storage or wiring failure. Rich errors pass through
// untouched so their category survives.
func Internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var rich *errors.Error
	if stderrors.As(err, &rich) {
		return err
	}
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeInternal)
}

// Upstream wraps a third-party failure whose message is shown to the client.
func Upstream(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeUpstream)
}

// Status resolves the HTTP status and client message for err.
func Status(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, TimeoutMessage
	}
	var rich *errors.Error
	if !stderrors.As(err, &rich) {
		return http.StatusInternalServerError, InternalMessage
	}
	switch rich.Category {
	case errors.CategoryValidation:
		return http.StatusBadRequest, rich.Message
	case errors.CategoryAuth:
		return http.StatusUnauthorized, rich.Message
	case errors.CategoryAuthz:
		return http.StatusForbidden, rich.Message
	case errors.CategoryNotFound:
		return http.StatusNotFound, rich.Message
	}
	if rich.TextCode == TextCodeUpstream {
		return http.StatusInternalServerError, rich.Message
	}
	return http.StatusInternalServerError, InternalMessage
}
