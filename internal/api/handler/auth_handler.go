package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/api/metrics"
	"github.com/internhub/portal/internal/api/middleware"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
)

type AuthHandler struct {
	backend ports.Backend
	store   ports.SessionStore
	log     zerolog.Logger
}

func NewAuthHandler(backend ports.Backend, store ports.SessionStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{backend: backend, store: store, log: log}
}

// Login authenticates against the backend and writes every session key in one go.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  redirectResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.backend.Login(c.Request().Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		return err
	}

	if err := h.store.Save(c.Response(), c.Request(), res.Session()); err != nil {
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	h.log.Info().Str("user_id", res.ID).Str("role", string(res.Role)).Msg("user signed in")

	return c.JSON(http.StatusOK, redirectResponse{Redirect: domain.HomePath(res.Role)})
}

// Logout clears every session key and sends the browser to the login page.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Success      303
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.store.Clear(c.Response(), c.Request()); err != nil {
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()

	req := c.Request()
	switch {
	case req.Header.Get(middleware.HeaderHXRequest) == "true":
		c.Response().Header().Set(middleware.HeaderHXRedirect, domain.PathLogin)
		return c.NoContent(http.StatusOK)
	case strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON):
		return c.JSON(http.StatusOK, redirectResponse{Redirect: domain.PathLogin})
	default:
		return c.Redirect(http.StatusSeeOther, domain.PathLogin)
	}
}

// Session reports the claims of the current session. The token's own expiry
// is read without verifying its signature and is informational only.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, ok := c.Get(middleware.ContextKeySession).(domain.Session)
	if !ok || !sess.Authenticated() {
		return domain.ErrUnauthenticated
	}

	resp := sessionResponse{
		Authenticated: true,
		Role:          sess.Role,
		Email:         sess.Email,
		ID:            sess.ID,
		UserCode:      sess.UserCode,
		Home:          domain.HomePath(sess.Role),
	}
	if exp, err := tokenExpiry(sess.Token); err == nil {
		t := exp.UTC()
		resp.TokenExpiresAt = &t
	}
	return c.JSON(http.StatusOK, resp)
}

var errNoExpiry = errors.New("token carries no expiry")

// tokenExpiry returns the exp claim of a JWT bearer token, if it is one.
func tokenExpiry(token string) (*jwt.NumericDate, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, errNoExpiry
	}
	return exp, nil
}
