package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/repository"
)

// ErrUnknownMethod indicates a method name Handle does not dispatch.
var ErrUnknownMethod = errors.New("unknown method")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, activity.ErrInvalidCategory):
		return &APIError{Code: "INVALID_CATEGORY", Message: err.Error(), RecoveryHint: "Use one of Bathroom, Sleep, Activities, Food, Needs"}
	case errors.Is(err, activity.ErrInvalidPayload):
		return &APIError{Code: "INVALID_PAYLOAD", Message: err.Error(), RecoveryHint: "Send exactly the payload variant matching the category"}
	case errors.Is(err, activity.ErrInvalidInput), errors.Is(err, child.ErrInvalidInput), errors.Is(err, audit.ErrInvalidFilter):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, activity.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "activity not found", RecoveryHint: "The record may have been deleted; reload the timeline"}
	case errors.Is(err, child.ErrChildNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "child not found", RecoveryHint: "Call list_children for valid ids"}
	case errors.Is(err, activity.ErrStoreUnavailable), errors.Is(err, repository.ErrUnavailable):
		return &APIError{Code: "STORE_UNAVAILABLE", Message: "store unavailable", RecoveryHint: "Retry later"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
