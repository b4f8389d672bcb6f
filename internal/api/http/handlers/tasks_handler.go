package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// TasksHandler manages department task endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs the handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// List GET /tasks?department=<name>.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListTasks(c.UserContext(), c.Query("department"))
	if err != nil {
		return err
	}
	return c.JSON(taskResponses(tasks))
}

// UpdateStatus POST /task/:id/status.
func (h *TasksHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	status, ok := domain.ParseStatus(req.NewStatus)
	if !ok {
		return apperrors.NewInvalidInput("unknown status", map[string]any{"new_status": req.NewStatus})
	}

	task, err := h.tasks.UpdateStatus(c.UserContext(), c.Params("id"), status, req.ChangedBy, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(taskResponse(*task))
}

// Delete DELETE /task/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	if err := h.tasks.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// Activity GET /tasks/:id/activity.
func (h *TasksHandler) Activity(c *fiber.Ctx) error {
	entries, err := h.tasks.ListTaskActivity(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(activityResponses(entries))
}

func taskResponse(task domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          task.ID,
		ComplaintID: task.ComplaintID,
		Department:  task.Department,
		IssueType:   task.IssueType,
		Priority:    task.Priority,
		Status:      task.Status,
		SLAHours:    task.SLAHours,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func taskResponses(tasks []domain.Task) []dto.TaskResponse {
	items := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskResponse(task))
	}
	return items
}

func activityResponses(entries []domain.ActivityLogEntry) []dto.ActivityLogResponse {
	items := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ActivityLogResponse{
			ID:        entry.ID,
			TaskID:    entry.TaskID,
			Timestamp: entry.Timestamp,
			ChangedBy: entry.ChangedBy,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			Remark:    entry.Remark,
		})
	}
	return items
}
