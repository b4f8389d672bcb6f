package classifier

import (
	"context"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// Result is the classification of one complaint description. Issues is a set;
// the intake orchestrator creates one task per distinct issue.
type Result struct {
	Department domain.Department   `json:"department"`
	Priority   domain.TaskPriority `json:"priority"`
	Issues     []string            `json:"issues"`
}

// Classifier maps free text to department, priority and issue labels. It is a
// pluggable external capability; implementations must be safe for concurrent
// use and must not retry internally.
type Classifier interface {
	Classify(ctx context.Context, description string) (Result, error)
}

// ValidateDescription rejects empty input before any classifier call.
func ValidateDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return "", apperrors.NewInvalidInput("description must not be empty", nil)
	}
	return trimmed, nil
}
