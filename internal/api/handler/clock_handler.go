package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/internhub/portal/internal/api/metrics"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/service"
)

// SharedContext is the process-wide clock and task selection read by pages.
type SharedContext interface {
	Location() *time.Location
	Snapshot() service.Snapshot
	Subscribe(fn func(service.Snapshot)) (unsubscribe func())
	SelectTask(scope string, task domain.Task)
	SelectedTask(scope string) (domain.Task, bool)
}

type ClockHandler struct {
	shared SharedContext
}

func NewClockHandler(shared SharedContext) *ClockHandler {
	return &ClockHandler{shared: shared}
}

func (h *ClockHandler) clock(s service.Snapshot) clockResponse {
	return clockResponse{Date: s.Date, Time: s.Time, Timezone: h.shared.Location().String()}
}

// Clock returns the shared date and time.
//
// @Summary      Shared clock
// @Tags         context
// @Produce      json
// @Success      200  {object}  clockResponse
// @Router       /api/clock [get]
func (h *ClockHandler) Clock(c echo.Context) error {
	return c.JSON(http.StatusOK, h.clock(h.shared.Snapshot()))
}

// Stream pushes the shared clock as server-sent events, one per tick, until
// the client goes away.
//
// @Summary      Shared clock stream
// @Tags         context
// @Produce      text/event-stream
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /api/clock/stream [get]
func (h *ClockHandler) Stream(c echo.Context) error {
	updates := make(chan service.Snapshot, 1)
	unsubscribe := h.shared.Subscribe(func(s service.Snapshot) {
		select {
		case updates <- s:
		default:
			// slow reader: it gets the next tick instead
		}
	})
	metrics.ClockSubscribers.Inc()
	defer func() {
		unsubscribe()
		metrics.ClockSubscribers.Dec()
	}()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	if err := h.writeEvent(res, h.shared.Snapshot()); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			if err := h.writeEvent(res, s); err != nil {
				return nil
			}
		}
	}
}

func (h *ClockHandler) writeEvent(res *echo.Response, s service.Snapshot) error {
	data, err := json.Marshal(h.clock(s))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: clock\ndata: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

// SelectTask records the task the signed-in employee is working on. The
// previous selection is replaced, not merged.
//
// @Summary      Select a task
// @Tags         context
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Task object as returned by the backend"
// @Success      200   {object}  selectedTaskResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/tasks/selected [put]
func (h *ClockHandler) SelectTask(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	task := domain.Task{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &task); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	h.shared.SelectTask(sess.Scope(), task)
	return c.JSON(http.StatusOK, selectedTaskResponse{Task: task})
}

// SelectedTask returns the signed-in employee's current task selection.
//
// @Summary      Selected task
// @Tags         context
// @Produce      json
// @Success      200  {object}  selectedTaskResponse
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /api/tasks/selected [get]
func (h *ClockHandler) SelectedTask(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	task, ok := h.shared.SelectedTask(sess.Scope())
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, selectedTaskResponse{Task: task})
}
