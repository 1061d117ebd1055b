package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/internhub/portal/internal/core/service"
)

func TestClockHandler_Clock(t *testing.T) {
	e := echo.New()
	h := NewClockHandler(newStubShared())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/clock", nil), rec)

	if err := h.Clock(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp clockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Date != "2024-03-01" || resp.Time != "10:15 AM" || resp.Timezone != "UTC" {
		t.Fatalf("unexpected clock: %+v", resp)
	}
}

func TestClockHandler_Stream(t *testing.T) {
	e := echo.New()
	shared := newStubShared()
	h := NewClockHandler(shared)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/clock/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	done := make(chan error, 1)
	go func() { done <- h.Stream(c) }()

	// wait for the subscription, publish one tick, then disconnect
	deadline := time.Now().Add(2 * time.Second)
	for len(shared.subscribers()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	shared.subscribers()[0](service.Snapshot{Date: "2024-03-01", Time: "10:16 AM"})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop after disconnect")
	}

	body := rec.Body.String()
	if got := rec.Header().Get(echo.HeaderContentType); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(body, `"time":"10:15 AM"`) || !strings.Contains(body, `"time":"10:16 AM"`) {
		t.Fatalf("expected initial and ticked events, got %q", body)
	}
}

func TestClockHandler_SelectTaskReplaces(t *testing.T) {
	e := echo.New()
	shared := newStubShared()
	h := NewClockHandler(shared)

	put := func(body string) {
		req := httptest.NewRequest(http.MethodPut, "/api/tasks/selected", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		withSession(c, employee)
		if err := h.SelectTask(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}
	put(`{"id":"t1","title":"Write report","priority":"high"}`)
	put(`{"id":"t2"}`)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tasks/selected", nil), rec)
	withSession(c, employee)
	if err := h.SelectedTask(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp selectedTaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Task["id"] != "t2" {
		t.Fatalf("expected last selection, got %v", resp.Task)
	}
	if _, merged := resp.Task["title"]; merged {
		t.Fatalf("selection must replace, not merge: %v", resp.Task)
	}
}

func TestClockHandler_SelectedTaskEmpty(t *testing.T) {
	e := echo.New()
	h := NewClockHandler(newStubShared())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tasks/selected", nil), rec)
	withSession(c, employee)

	if err := h.SelectedTask(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
