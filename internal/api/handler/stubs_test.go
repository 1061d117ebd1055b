package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/internhub/portal/internal/api/middleware"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/service"
	"github.com/internhub/portal/internal/core/validation"
)

type stubBackend struct {
	loginFn          func(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error)
	registerFn       func(ctx context.Context, user domain.User) (*domain.User, error)
	updateProfileFn  func(ctx context.Context, userID string, user domain.User, picture *domain.Upload) (*domain.User, error)
	changePasswordFn func(ctx context.Context, userID string, change domain.PasswordChange) error
	forwardFn        func(ctx context.Context, r *http.Request, path string) (*http.Response, error)
	pingFn           func(ctx context.Context) error
}

func (s *stubBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	return s.loginFn(ctx, creds)
}

func (s *stubBackend) RegisterIntern(ctx context.Context, user domain.User) (*domain.User, error) {
	return s.registerFn(ctx, user)
}

func (s *stubBackend) UpdateProfile(ctx context.Context, userID string, user domain.User, picture *domain.Upload) (*domain.User, error) {
	return s.updateProfileFn(ctx, userID, user, picture)
}

func (s *stubBackend) ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) error {
	return s.changePasswordFn(ctx, userID, change)
}

func (s *stubBackend) Forward(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	return s.forwardFn(ctx, r, path)
}

func (s *stubBackend) Ping(ctx context.Context) error {
	return s.pingFn(ctx)
}

type stubSessionStore struct {
	saved   *domain.Session
	cleared int
	saveErr error
}

func (s *stubSessionStore) Get(*http.Request, string) (string, bool) { return "", false }

func (s *stubSessionStore) Load(*http.Request) (domain.Session, error) {
	if s.saved == nil {
		return domain.Session{}, nil
	}
	return *s.saved, nil
}

func (s *stubSessionStore) Save(_ http.ResponseWriter, _ *http.Request, sess domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = &sess
	return nil
}

func (s *stubSessionStore) Clear(http.ResponseWriter, *http.Request) error {
	s.cleared++
	s.saved = nil
	return nil
}

type stubShared struct {
	mu       sync.Mutex
	snapshot service.Snapshot
	subs     []func(service.Snapshot)
	tasks    map[string]domain.Task
}

func newStubShared() *stubShared {
	return &stubShared{
		snapshot: service.Snapshot{Date: "2024-03-01", Time: "10:15 AM"},
		tasks:    map[string]domain.Task{},
	}
}

func (s *stubShared) Location() *time.Location { return time.UTC }

func (s *stubShared) Snapshot() service.Snapshot { return s.snapshot }

func (s *stubShared) Subscribe(fn func(service.Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *stubShared) subscribers() []func(service.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]func(service.Snapshot){}, s.subs...)
}

func (s *stubShared) SelectTask(scope string, task domain.Task) { s.tasks[scope] = task }

func (s *stubShared) SelectedTask(scope string) (domain.Task, bool) {
	t, ok := s.tasks[scope]
	return t, ok
}

var employee = domain.Session{Token: "tok", Role: domain.RoleEmployee, Email: "e@corp.lk", ID: "u-1", UserCode: "E-1"}

// newTestEcho returns an echo instance with the portal validator installed.
func newTestEcho() *echo.Echo {
	e := echo.New()
	v := validation.New(validation.DefaultPasswordPolicy())
	e.Validator = NewValidator(v.Engine())
	return e
}

// withSession mimics the Gate middleware having admitted sess.
func withSession(c echo.Context, sess domain.Session) {
	c.Set(middleware.ContextKeySession, sess)
	c.SetRequest(c.Request().WithContext(domain.ContextWithSession(c.Request().Context(), sess)))
}
