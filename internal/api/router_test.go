package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/service"
	"github.com/internhub/portal/internal/core/validation"
	"github.com/internhub/portal/internal/infrastructure/backend"
	"github.com/internhub/portal/internal/infrastructure/session"
)

type testPortal struct {
	e     *echo.Echo
	store *session.CookieStore
}

// newTestPortal wires the router against a real cookie store and a real API
// client pointed at backendFn.
func newTestPortal(t *testing.T, backendFn http.HandlerFunc) *testPortal {
	t.Helper()
	srv := httptest.NewServer(backendFn)
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Config{BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	store := session.NewCookieStore(session.CookieOptions{TTL: time.Hour})

	e := NewRouter(Dependencies{
		Log:        zerolog.Nop(),
		Store:      store,
		Backend:    client,
		Shared:     service.NewContextProvider(time.UTC, zerolog.Nop()),
		Validator:  validation.New(validation.DefaultPasswordPolicy()),
		Ready:      nil,
		Registerer: prometheus.NewRegistry(),
	})
	return &testPortal{e: e, store: store}
}

// signedIn returns cookies for sess as the login flow would write them.
func (p *testPortal) signedIn(t *testing.T, sess domain.Session) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := p.store.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return rec.Result().Cookies()
}

func (p *testPortal) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

func noBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func TestRouter_PageGate(t *testing.T) {
	admin := domain.Session{Token: "t", Role: domain.RoleAdmin, ID: "1"}
	employee := domain.Session{Token: "t", Role: domain.RoleEmployee, ID: "2"}
	noToken := domain.Session{Role: domain.RoleAdmin, ID: "3"}

	tests := []struct {
		name     string
		path     string
		session  *domain.Session
		wantCode int
		wantLoc  string
	}{
		{"anonymous admin page", "/admin/interns", nil, http.StatusFound, "/login"},
		{"role without token", "/admin", &noToken, http.StatusFound, "/login"},
		{"employee on admin page", "/admin", &employee, http.StatusFound, "/"},
		{"admin on employee page", "/employee/tasks", &admin, http.StatusFound, "/"},
		{"admin on admin page", "/admin/interns", &admin, http.StatusOK, ""},
		{"employee on employee page", "/employee", &employee, http.StatusOK, ""},
		{"any role on profile", "/profile", &admin, http.StatusOK, ""},
		{"anonymous login page", "/login", nil, http.StatusOK, ""},
		{"anonymous home", "/", nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPortal(t, noBackend(t))

			var cookies []*http.Cookie
			if tt.session != nil {
				if tt.session.Authenticated() {
					cookies = p.signedIn(t, *tt.session)
				} else {
					cookies = []*http.Cookie{{Name: domain.KeyRole, Value: string(tt.session.Role)}}
				}
			}
			rec := p.do(httptest.NewRequest(http.MethodGet, tt.path, nil), cookies)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if loc := rec.Header().Get(echo.HeaderLocation); loc != tt.wantLoc {
				t.Fatalf("expected location %q, got %q", tt.wantLoc, loc)
			}
		})
	}
}

func TestRouter_LoginThenAuthorizedCall(t *testing.T) {
	var seenAuth string
	p := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_, _ = w.Write([]byte(`{"token":"fresh-token","role":"employee","email":"e@corp.lk","id":"42","userCode":"E-42"}`))
		case "/tasks":
			seenAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"e@corp.lk","password":"Secret123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := p.do(req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["redirect"] != "/employee" {
		t.Fatalf("expected /employee, got %v", resp)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != len(domain.SessionKeys) {
		t.Fatalf("expected %d session cookies, got %d", len(domain.SessionKeys), len(cookies))
	}

	rec = p.do(httptest.NewRequest(http.MethodGet, "/api/backend/tasks", nil), cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("proxy: expected 200, got %d", rec.Code)
	}
	if seenAuth != "Bearer fresh-token" {
		t.Fatalf("expected fresh token on the first call after login, got %q", seenAuth)
	}
}

func TestRouter_Backend401ClearsSession(t *testing.T) {
	p := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
	})
	cookies := p.signedIn(t, domain.Session{Token: "stale", Role: domain.RoleEmployee, ID: "2"})

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/backend/tasks", nil), cookies)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["redirect"] != domain.PathLogin {
		t.Fatalf("expected redirect to login, got %+v", body)
	}

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	for _, key := range domain.SessionKeys {
		if !cleared[key] {
			t.Fatalf("expected %s cookie to be cleared", key)
		}
	}
}

func TestRouter_BackendValidationKeepsMessage(t *testing.T) {
	p := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Current password is incorrect"}`))
	})
	cookies := p.signedIn(t, domain.Session{Token: "t", Role: domain.RoleEmployee, ID: "2"})

	req := httptest.NewRequest(http.MethodPut, "/api/password",
		strings.NewReader(`{"current_password":"Oldpass1","new_password":"Newpass1","confirm_password":"Newpass1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := p.do(req, cookies)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Current password is incorrect") {
		t.Fatalf("expected backend message, got %s", rec.Body.String())
	}
}

func TestRouter_APIGateAnswersJSON(t *testing.T) {
	p := newTestPortal(t, noBackend(t))
	cookies := p.signedIn(t, domain.Session{Token: "t", Role: domain.RoleEmployee, ID: "2"})

	rec := p.do(httptest.NewRequest(http.MethodPost, "/api/interns", strings.NewReader(`{}`)), cookies)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/"`) {
		t.Fatalf("expected redirect target in body, got %s", rec.Body.String())
	}
}

func TestRouter_Health(t *testing.T) {
	p := newTestPortal(t, noBackend(t))
	rec := p.do(httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_LoginLandsOnAdmittedPage(t *testing.T) {
	tests := []struct {
		role    domain.Role
		landing string
	}{
		{domain.RoleAdmin, "/admin"},
		{domain.RoleEmployee, "/employee"},
		{domain.RoleSuperAdmin, "/profile"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			p := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"token":"tok","role":"` + string(tt.role) + `","email":"a@corp.lk","id":"7","userCode":"U-7"}`))
			})

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@corp.lk","password":"Secret123"}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := p.do(req, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp["redirect"] != tt.landing {
				t.Fatalf("expected %s, got %v", tt.landing, resp)
			}

			page := p.do(httptest.NewRequest(http.MethodGet, resp["redirect"], nil), rec.Result().Cookies())
			if page.Code != http.StatusOK {
				t.Fatalf("landing page: expected 200, got %d (location %q)", page.Code, page.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestRouter_WrongCurrentPasswordKeepsSession(t *testing.T) {
	p := newTestPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"current password does not match"}`))
	})
	cookies := p.signedIn(t, domain.Session{Token: "t", Role: domain.RoleEmployee, ID: "2"})

	req := httptest.NewRequest(http.MethodPut, "/api/password",
		strings.NewReader(`{"current_password":"Wrongpass1","new_password":"Newpass1","confirm_password":"Newpass1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := p.do(req, cookies)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"current_password"`) {
		t.Fatalf("expected current_password field error, got %s", rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			t.Fatalf("session cookie %s cleared on wrong password", c.Name)
		}
	}
}

func TestRouter_BackendPathTraversalRejected(t *testing.T) {
	p := newTestPortal(t, noBackend(t))
	cookies := p.signedIn(t, domain.Session{Token: "t", Role: domain.RoleEmployee, ID: "2"})

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/backend/tasks/%2e%2e/%2e%2e/admin/users", nil), cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_ClockStreamRequiresSession(t *testing.T) {
	p := newTestPortal(t, noBackend(t))

	rec := p.do(httptest.NewRequest(http.MethodGet, "/api/clock/stream", nil), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("expected login redirect in body, got %s", rec.Body.String())
	}
}
