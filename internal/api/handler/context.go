package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/internhub/portal/internal/api/middleware"
	"github.com/internhub/portal/internal/core/domain"
)

// ctxSession returns the session admitted by the Gate middleware and
// fast-fails before any backend call:
//   - a missing session means the handler was mounted without the gate.
//   - the id claim is required by every per-user backend route.
func ctxSession(c echo.Context) (domain.Session, error) {
	sess, ok := c.Get(middleware.ContextKeySession).(domain.Session)
	if !ok || !sess.Authenticated() {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	if sess.ID == "" {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "session missing user identity")
	}
	return sess, nil
}
