package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/internhub/portal/internal/api/metrics"
	"github.com/internhub/portal/internal/core/domain"
)

// ContextKeySession is the echo context key holding the admitted session.
const ContextKeySession = "session"

// Evaluator decides whether a request may reach a protected route.
type Evaluator interface {
	Evaluate(r *http.Request, required domain.RoleSet) (domain.Session, domain.Outcome)
}

// Gate admits a request only when the session read at request time passes
// the access decision for roles. An empty roles list admits any
// authenticated session. Nothing downstream runs for a rejected request.
func Gate(g Evaluator, roles ...domain.Role) echo.MiddlewareFunc {
	required := domain.NewRoleSet(roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, outcome := g.Evaluate(c.Request(), required)
			metrics.GateDecisionsTotal.WithLabelValues(outcome.String()).Inc()

			switch outcome {
			case domain.Render:
				c.Set(ContextKeySession, sess)
				c.SetRequest(c.Request().WithContext(domain.ContextWithSession(c.Request().Context(), sess)))
				return next(c)
			case domain.RedirectLogin:
				return Redirect(c, outcome.Target(), http.StatusUnauthorized)
			default:
				return Redirect(c, outcome.Target(), http.StatusForbidden)
			}
		}
	}
}
