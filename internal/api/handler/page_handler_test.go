package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPageHandler_RendersShell(t *testing.T) {
	e := echo.New()
	e.Renderer = NewTemplateRenderer()
	h := NewPageHandler(newStubShared())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/employee/tasks", nil), rec)
	withSession(c, employee)

	if err := h.Page("Tasks")(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-page="/employee/tasks"`, `data-role="employee"`, `data-home="/employee"`, "10:15 AM", "Sign out"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in shell", want)
		}
	}
	if strings.Contains(body, employee.Token) {
		t.Fatalf("token must not be rendered")
	}
}

func TestPageHandler_PublicShell(t *testing.T) {
	e := echo.New()
	e.Renderer = NewTemplateRenderer()
	h := NewPageHandler(newStubShared())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec)

	if err := h.Page("Sign in")(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if strings.Contains(body, "data-role") || strings.Contains(body, "Sign out") {
		t.Fatalf("public shell must not carry session data")
	}
}
