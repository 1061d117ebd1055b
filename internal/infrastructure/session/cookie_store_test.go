package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/internhub/portal/internal/core/domain"
)

// replay builds a request carrying the live cookies set on rec.
func replay(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestCookieStore_SaveAndLoad(t *testing.T) {
	store := NewCookieStore(CookieOptions{TTL: time.Hour})
	sess := domain.Session{
		Token:    "jwt.token.value",
		Role:     domain.RoleEmployee,
		Email:    "nimal perera@company.lk",
		ID:       "64f1c2",
		UserCode: "INT-042",
	}

	rec := httptest.NewRecorder()
	if err := store.Save(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != len(domain.SessionKeys) {
		t.Fatalf("expected %d cookies, got %d", len(domain.SessionKeys), len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge != 3600 {
			t.Fatalf("cookie %s: expected max-age 3600, got %d", c.Name, c.MaxAge)
		}
		if c.Path != "/" {
			t.Fatalf("cookie %s: expected path /, got %q", c.Name, c.Path)
		}
		if c.HttpOnly != (c.Name == domain.KeyToken) {
			t.Fatalf("cookie %s: unexpected HttpOnly=%v", c.Name, c.HttpOnly)
		}
	}

	got, err := store.Load(replay(rec))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != sess {
		t.Fatalf("expected %+v, got %+v", sess, got)
	}

	if v, ok := store.Get(replay(rec), domain.KeyUserCode); !ok || v != "INT-042" {
		t.Fatalf("expected userCode, got %q %v", v, ok)
	}
}

func TestCookieStore_SaveRejectsMissingToken(t *testing.T) {
	store := NewCookieStore(CookieOptions{})
	rec := httptest.NewRecorder()

	err := store.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), domain.Session{Role: domain.RoleAdmin})
	if err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookies written")
	}
}

func TestCookieStore_SaveExpiresEmptyClaims(t *testing.T) {
	store := NewCookieStore(CookieOptions{})
	rec := httptest.NewRecorder()

	sess := domain.Session{Token: "t", Role: domain.RoleAdmin, Email: "admin@company.lk", ID: "1"}
	if err := store.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == domain.KeyUserCode {
			found = true
			if c.MaxAge >= 0 {
				t.Fatalf("expected empty userCode to be expired, got max-age %d", c.MaxAge)
			}
		}
	}
	if !found {
		t.Fatalf("expected userCode cookie to be written")
	}
}

func TestCookieStore_Clear(t *testing.T) {
	store := NewCookieStore(CookieOptions{})
	rec := httptest.NewRecorder()

	if err := store.Clear(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil)); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != len(domain.SessionKeys) {
		t.Fatalf("expected every key cleared, got %d cookies", len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge >= 0 || c.Value != "" {
			t.Fatalf("cookie %s not expired: %+v", c.Name, c)
		}
	}

	got, _ := store.Load(replay(rec))
	if got.Authenticated() {
		t.Fatalf("expected cleared session, got %+v", got)
	}
}

func TestCookieStore_LoadWithoutCookies(t *testing.T) {
	store := NewCookieStore(CookieOptions{})

	got, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != (domain.Session{}) {
		t.Fatalf("expected zero session, got %+v", got)
	}
	if _, ok := store.Get(httptest.NewRequest(http.MethodGet, "/", nil), "theme"); ok {
		t.Fatalf("expected unknown key to be absent")
	}
}
