package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/backend"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/middleware"
	"github.com/storefront/admin-console/internal/service"
)

// writeCategoryError maps a category operation error to a problem response.
// The detail is always the same message the manager raised as a notification.
func writeCategoryError(c echo.Context, op domain.CategoryOperation, err error) error {
	msg := service.UserMessage(op, err)

	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: msg},
		})
	case errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrImageTooSmall),
		errors.Is(err, service.ErrInvalidImageData):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "image", Message: imageMessage(err)},
		})
	case errors.Is(err, domain.ErrNotConfirmed):
		return NewValidationError(c, msg, []ValidationError{
			{Field: "confirm", Message: "Pass confirm=true to delete"},
		})
	case errors.Is(err, domain.ErrNoSelection):
		return NewValidationError(c, msg, nil)
	case errors.Is(err, domain.ErrCategoryMissing), errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, msg)
	case errors.Is(err, domain.ErrNoSession):
		return NewUnauthorizedError(c, msg)
	}

	if apiErr, ok := backend.IsAPIError(err); ok {
		if apiErr.Status == http.StatusUnauthorized {
			return NewUnauthorizedError(c, msg)
		}
		return NewBadGatewayError(c, msg)
	}
	if errors.Is(err, backend.ErrTransport) {
		return NewBadGatewayError(c, msg)
	}

	log.Error().Err(err).
		Str("operation", string(op)).
		Str("session_id", middleware.GetSessionID(c).String()).
		Msg("Unexpected category error")
	return NewInternalError(c, msg)
}

func imageMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrImageTooLarge):
		return "File too large. Maximum size is 5MB"
	case errors.Is(err, service.ErrInvalidFormat):
		return "Invalid format. Supported: JPEG, PNG, WebP"
	case errors.Is(err, service.ErrImageTooSmall):
		return "Image too small. Minimum 50x50 pixels"
	default:
		return "Invalid image data"
	}
}
