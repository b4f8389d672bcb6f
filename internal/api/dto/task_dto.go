package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// TaskResponse mirrors a task record.
type TaskResponse struct {
	ID          string              `json:"id"`
	ComplaintID string              `json:"complaint_id"`
	Department  domain.Department   `json:"department"`
	IssueType   string              `json:"issue_type"`
	Priority    domain.TaskPriority `json:"priority"`
	Status      domain.TaskStatus   `json:"status"`
	SLAHours    float64             `json:"sla_hours"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StatusUpdateRequest payload, field names as the UI sends them.
type StatusUpdateRequest struct {
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by"`
	Reason    string `json:"reason"`
}

// ActivityLogResponse mirrors one audit trail entry.
type ActivityLogResponse struct {
	ID        string            `json:"id"`
	TaskID    string            `json:"task_id"`
	Timestamp time.Time         `json:"timestamp"`
	ChangedBy string            `json:"changed_by"`
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
	Remark    string            `json:"remark"`
}

// SLABreachResponse mirrors one derived breach record.
type SLABreachResponse struct {
	TaskID       string              `json:"task_id"`
	Department   domain.Department   `json:"department"`
	Issue        string              `json:"issue"`
	Priority     domain.TaskPriority `json:"priority"`
	SLAHours     float64             `json:"sla_hours"`
	ElapsedHours float64             `json:"elapsed_hours"`
	IsBreached   bool                `json:"is_breached"`
}
