package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// HTTPClassifier calls an external perception endpoint. The caller bounds the
// request through ctx; a deadline hit maps to ClassifierTimeout, any other
// transport failure to ClassifierUnavailable. No retries happen here.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

// NewHTTPClassifier builds the adapter for the given endpoint URL.
func NewHTTPClassifier(url string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClassifier{url: url, client: client}
}

type classifyRequest struct {
	Description string `json:"description"`
}

type classifyResponse struct {
	Department string   `json:"department"`
	Priority   string   `json:"priority"`
	Issues     []string `json:"issues"`
}

// Classify posts the description to the perception endpoint and normalizes
// the labels it returns.
func (c *HTTPClassifier) Classify(ctx context.Context, description string) (Result, error) {
	trimmed, err := ValidateDescription(description)
	if err != nil {
		return Result{}, err
	}

	body, err := json.Marshal(classifyRequest{Description: trimmed})
	if err != nil {
		return Result{}, apperrors.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, apperrors.NewClassifierTimeout(err)
		}
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		return Result{}, apperrors.NewClassifierUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, apperrors.NewClassifierUnavailable(fmt.Errorf("perception endpoint returned %d", resp.StatusCode))
	}

	var payload classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, apperrors.NewClassifierUnavailable(fmt.Errorf("decode perception response: %w", err))
	}

	return normalizeResult(payload), nil
}

// normalizeResult maps the endpoint's free-form labels onto the canonical
// enums rather than propagating ad hoc strings.
func normalizeResult(payload classifyResponse) Result {
	department, ok := domain.ParseDepartment(payload.Department)
	if !ok {
		department = domain.DepartmentGeneral
	}
	priority, ok := domain.ParsePriority(payload.Priority)
	if !ok {
		priority = domain.TaskPriorityMedium
	}
	issues := make([]string, 0, len(payload.Issues))
	for _, issue := range payload.Issues {
		issues = appendUnique(issues, issue)
	}
	return Result{Department: department, Priority: priority, Issues: issues}
}
