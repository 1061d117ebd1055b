package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderHXRequest and HeaderHXRedirect are the htmx request and redirect headers.
const (
	HeaderHXRequest  = "HX-Request"
	HeaderHXRedirect = "HX-Redirect"
)

type redirectResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// IsAPI reports whether the request targets a JSON endpoint rather than a page.
func IsAPI(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/auth/")
}

// Redirect sends the client to target. Pages get a plain 302, htmx requests
// an HX-Redirect header and API calls a JSON body naming the target, both
// with status.
func Redirect(c echo.Context, target string, status int) error {
	switch {
	case IsAPI(c):
		msg := "forbidden"
		if status == http.StatusUnauthorized {
			msg = "authentication required"
		}
		return c.JSON(status, redirectResponse{Error: msg, Redirect: target})
	case c.Request().Header.Get(HeaderHXRequest) == "true":
		c.Response().Header().Set(HeaderHXRedirect, target)
		return c.NoContent(status)
	default:
		return c.Redirect(http.StatusFound, target)
	}
}
