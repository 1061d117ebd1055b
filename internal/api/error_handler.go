package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/api/metrics"
	"github.com/internhub/portal/internal/api/middleware"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
	"github.com/internhub/portal/internal/infrastructure/backend"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Treats a backend 401 as an expired session: the session is cleared and
//     the client is sent to the login page.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, store ports.SessionStore) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrUnauthenticated) {
			reauthenticate(err, log, store, c)
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// reauthenticate is the single place a rejected token is handled.
func reauthenticate(err error, log zerolog.Logger, store ports.SessionStore, c echo.Context) {
	if clearErr := store.Clear(c.Response(), c.Request()); clearErr != nil {
		log.Warn().Err(clearErr).Msg("clear expired session")
	}
	metrics.SessionEventsTotal.WithLabelValues("expired").Inc()
	log.Info().Err(err).Str("path", c.Request().URL.Path).Msg("session rejected by backend, re-authentication required")

	_ = middleware.Redirect(c, domain.PathLogin, http.StatusUnauthorized)
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Backend rejections keep the backend's own wording.
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return http.StatusForbidden, apiErr.Message
		case errors.Is(err, domain.ErrNotFound):
			return http.StatusNotFound, apiErr.Message
		case errors.Is(err, domain.ErrValidation):
			return http.StatusUnprocessableEntity, apiErr.Message
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUnknownForm):
		return http.StatusNotFound, "unknown form"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation failed"
	case errors.Is(err, domain.ErrBackend):
		log.Error().Err(err).Str("path", c.Path()).Msg("backend failure")
		return http.StatusBadGateway, "backend unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
