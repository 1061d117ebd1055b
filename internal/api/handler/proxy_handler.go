package handler

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/core/ports"
)

// hopHeaders are not copied from the backend answer.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Content-Length":      {},
}

// ProxyHandler relays page data requests to the backend with the session's
// bearer token, so pages never hold the token themselves.
type ProxyHandler struct {
	backend ports.Backend
	log     zerolog.Logger
}

func NewProxyHandler(backend ports.Backend, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{backend: backend, log: log}
}

// Forward handles ANY /api/backend/*.
//
// @Summary      Backend passthrough
// @Tags         backend
// @Param        path  path  string  true  "Backend path"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /api/backend/{path} [get]
func (h *ProxyHandler) Forward(c echo.Context) error {
	path, ok := backendPath(c.Param("*"))
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid path"})
	}

	resp, err := h.backend.Forward(c.Request().Context(), c.Request(), path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dst := c.Response().Header()
	for k, vv := range resp.Header {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(k)]; hop {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)

	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.log.Warn().Err(err).Str("path", path).Msg("backend response copy interrupted")
	}
	return nil
}

// backendPath turns the wildcard part of /api/backend/* into the path relayed
// to the backend. Dot segments, escaped or not, are refused so a request can
// never climb out of the backend base path.
func backendPath(raw string) (string, bool) {
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	for _, seg := range strings.FieldsFunc(unescaped, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == "." || seg == ".." {
			return "", false
		}
	}
	return "/" + raw, true
}
