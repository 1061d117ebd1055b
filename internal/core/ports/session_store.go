package ports

import (
	"net/http"

	"github.com/internhub/portal/internal/core/domain"
)

// SessionStore persists the five session keys for a browser.
type SessionStore interface {
	// Get returns a single key of the current session.
	Get(r *http.Request, key string) (string, bool)
	// Load reads the whole session. A missing session yields a zero Session
	// and no error.
	Load(r *http.Request) (domain.Session, error)
	// Save writes every key together with the store's fixed TTL.
	Save(w http.ResponseWriter, r *http.Request, s domain.Session) error
	// Clear removes every key. Clearing an absent session is a no-op.
	Clear(w http.ResponseWriter, r *http.Request) error
}
