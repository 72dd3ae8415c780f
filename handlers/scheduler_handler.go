package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/contact-dispatch-service/internal/scheduler"
	"github.com/onurcolak/contact-dispatch-service/pkg/response"
)

type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
}

func NewSchedulerHandler(sched *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: sched}
}

// GetSchedulerStatus godoc
// @Summary Get scheduler status
// @Description Returns whether the scheduler accepts jobs, how many are queued and running, and totals since start
// @Tags scheduler
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/scheduler/status [get]
func (h *SchedulerHandler) GetSchedulerStatus(c echo.Context) error {
	return response.Ok(c, h.scheduler.GetStatus())
}
