package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ProcessComplaintRequest payload.
type ProcessComplaintRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
}

// PerceptionRequest payload.
type PerceptionRequest struct {
	Description string `json:"description"`
}

// ComplaintResponse mirrors a stored complaint.
type ComplaintResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// ComplaintContext is the classification-enriched complaint returned by the
// intake endpoint.
type ComplaintContext struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Department  domain.Department   `json:"department"`
	Priority    domain.TaskPriority `json:"priority"`
	Issues      []string            `json:"issues"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ProcessComplaintResponse is the intake result.
type ProcessComplaintResponse struct {
	ComplaintContext ComplaintContext `json:"complaint_context"`
	Tasks            []TaskResponse   `json:"tasks"`
}

// PerceptionResponse is the classification preview.
type PerceptionResponse struct {
	Department domain.Department   `json:"department"`
	Priority   domain.TaskPriority `json:"priority"`
	Issues     []string            `json:"issues"`
}
