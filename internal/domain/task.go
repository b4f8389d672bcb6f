package domain

import (
	"strings"
	"time"
)

// TaskStatus enumerates lifecycle states for tasks.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusResolved   TaskStatus = "Resolved"
	TaskStatusCancelled  TaskStatus = "Cancelled"

	// StatusInit is the sentinel old-status recorded when a task is created.
	StatusInit TaskStatus = "INIT"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusResolved || s == TaskStatusCancelled
}

// ParseStatus normalizes the status casings observed across clients
// ("RESOLVED", "in_progress", "Completed") to one canonical enum value.
func ParseStatus(value string) (TaskStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	switch normalized {
	case "pending", "open":
		return TaskStatusPending, true
	case "inprogress":
		return TaskStatusInProgress, true
	case "resolved", "completed", "done":
		return TaskStatusResolved, true
	case "cancelled", "canceled":
		return TaskStatusCancelled, true
	default:
		return "", false
	}
}

// TaskPriority enumerates SLA urgency tiers.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Low"
	TaskPriorityMedium   TaskPriority = "Medium"
	TaskPriorityHigh     TaskPriority = "High"
	TaskPriorityCritical TaskPriority = "Critical"
)

// Rank orders priorities, Critical highest.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityCritical:
		return 4
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority maps free-form input to a canonical priority.
func ParsePriority(value string) (TaskPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return TaskPriorityLow, true
	case "medium", "normal":
		return TaskPriorityMedium, true
	case "high":
		return TaskPriorityHigh, true
	case "critical", "urgent":
		return TaskPriorityCritical, true
	default:
		return "", false
	}
}

// Task is a department-routed, trackable unit of work derived from a
// complaint. It is the unit of status tracking and SLA measurement; SLAHours
// is frozen at creation and never recomputed.
type Task struct {
	ID          string
	ComplaintID string
	Department  Department
	IssueType   string
	Priority    TaskPriority
	Status      TaskStatus
	SLAHours    float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
