package service

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
)

// Decide is the access-control decision for one navigation attempt:
//   - no token: redirect to the login page, whatever roles the route wants.
//   - a non-empty role set that does not contain the session role: redirect home.
//   - otherwise render.
//
// It performs no I/O; the token is not checked against the backend.
func Decide(s domain.Session, required domain.RoleSet) domain.Outcome {
	if !s.Authenticated() {
		return domain.RedirectLogin
	}
	if len(required) > 0 && !required.Has(s.Role) {
		return domain.RedirectHome
	}
	return domain.Render
}

// Gate evaluates Decide against the session read from the store at
// evaluation time.
type Gate struct {
	store ports.SessionStore
	log   zerolog.Logger
}

func NewGate(store ports.SessionStore, log zerolog.Logger) *Gate {
	return &Gate{store: store, log: log}
}

// Evaluate loads the request's session and decides. A session that cannot be
// loaded is treated as absent.
func (g *Gate) Evaluate(r *http.Request, required domain.RoleSet) (domain.Session, domain.Outcome) {
	s, err := g.store.Load(r)
	if err != nil {
		g.log.Warn().Err(err).Str("path", r.URL.Path).Msg("session load failed, treating as unauthenticated")
		s = domain.Session{}
	}

	outcome := Decide(s, required)
	g.log.Debug().
		Str("path", r.URL.Path).
		Str("role", string(s.Role)).
		Stringer("outcome", outcome).
		Msg("gate decision")

	return s, outcome
}
