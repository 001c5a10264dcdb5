package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/server/middleware"
)

// toHTTPError maps a domain error onto a problem response. Only the public
// message reaches the client; infrastructure detail is logged.
func toHTTPError(op string, err error) error {
	msg := domain.PublicMessage(err)

	switch {
	case errors.Is(err, domain.ErrValidation):
		return huma.Error400BadRequest(msg)
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized(msg)
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden(msg)
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(msg)
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(msg)
	}

	log.Error().Err(err).Str("op", op).Msg("api: request failed")
	return huma.Error500InternalServerError(msg)
}

// actor returns the caller set by the auth middleware. A missing identity
// yields the zero value, which every operation rejects as unauthorized.
func actor(ctx context.Context) domain.Identity {
	id, _ := middleware.IdentityFromContext(ctx)
	return id
}
