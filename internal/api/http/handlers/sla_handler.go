package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// SLAHandler serves derived breach records.
type SLAHandler struct {
	sla *service.SLAService
}

// NewSLAHandler constructs the handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{sla: slaService}
}

// List GET /sla-breaches. Records are recomputed against the current clock on
// every call; terminal tasks never appear.
func (h *SLAHandler) List(c *fiber.Ctx) error {
	breaches, err := h.sla.ActiveBreaches(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SLABreachResponse, 0, len(breaches))
	for _, breach := range breaches {
		items = append(items, dto.SLABreachResponse{
			TaskID:       breach.TaskID,
			Department:   breach.Department,
			Issue:        breach.IssueType,
			Priority:     breach.Priority,
			SLAHours:     breach.SLAHours,
			ElapsedHours: breach.ElapsedHours,
			IsBreached:   breach.Breached,
		})
	}
	return c.JSON(items)
}
