package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/service"
)

// ActivityHandler serves the audit trail.
type ActivityHandler struct {
	tasks *service.TaskService
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(tasks *service.TaskService) *ActivityHandler {
	return &ActivityHandler{tasks: tasks}
}

// List GET /activity-logs.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	entries, err := h.tasks.ListActivity(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(activityResponses(entries))
}
