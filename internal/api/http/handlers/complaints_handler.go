package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintsHandler manages citizen intake endpoints.
type ComplaintsHandler struct {
	intake *service.IntakeService
}

// NewComplaintsHandler constructs the handler.
func NewComplaintsHandler(intake *service.IntakeService) *ComplaintsHandler {
	return &ComplaintsHandler{intake: intake}
}

// Process POST /complaint/process.
func (h *ComplaintsHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	submission, err := h.intake.Submit(c.UserContext(), req.Description, req.Location)
	if err != nil {
		// Partial fan-out: the complaint and any tasks already created
		// survive; surface them alongside the failure so nothing is lost.
		if submission != nil && submission.Complaint != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"message":           domainErr.Message,
				"complaint_context": complaintContext(submission),
				"tasks":             taskResponses(submission.Tasks),
				"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
					"details": domainErr.Details,
				},
			})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ProcessComplaintResponse{
		ComplaintContext: complaintContext(submission),
		Tasks:            taskResponses(submission.Tasks),
	})
}

// Perceive POST /agent/perception.
func (h *ComplaintsHandler) Perceive(c *fiber.Ctx) error {
	var req dto.PerceptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	result, err := h.intake.Perceive(c.UserContext(), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(dto.PerceptionResponse{
		Department: result.Department,
		Priority:   result.Priority,
		Issues:     issueList(result.Issues),
	})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	complaints, err := h.intake.ListComplaints(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for _, complaint := range complaints {
		items = append(items, complaintResponse(complaint))
	}
	return c.JSON(items)
}

// Delete DELETE /complaint/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	if err := h.intake.DeleteComplaint(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func complaintResponse(complaint domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:          complaint.ID,
		Description: complaint.Description,
		Location:    complaint.Location,
		CreatedAt:   complaint.CreatedAt,
	}
}

func complaintContext(submission *service.SubmissionResult) dto.ComplaintContext {
	return dto.ComplaintContext{
		ID:          submission.Complaint.ID,
		Description: submission.Complaint.Description,
		Location:    submission.Complaint.Location,
		Department:  submission.Classification.Department,
		Priority:    submission.Classification.Priority,
		Issues:      issueList(submission.Classification.Issues),
		CreatedAt:   submission.Complaint.CreatedAt,
	}
}

func issueList(issues []string) []string {
	if issues == nil {
		return []string{}
	}
	return issues
}
