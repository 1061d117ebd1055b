package ports

import (
	"context"
	"net/http"

	"github.com/internhub/portal/internal/core/domain"
)

// Backend is the HR REST API consumed by the portal. Calls made with a
// context carrying a session are sent with that session's bearer token.
type Backend interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error)
	RegisterIntern(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, user domain.User, picture *domain.Upload) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) error
	// Forward relays an arbitrary request to the backend under path.
	Forward(ctx context.Context, r *http.Request, path string) (*http.Response, error)
	Ping(ctx context.Context) error
}
