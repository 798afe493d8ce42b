package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	// ErrNotAssigned rejects session starts for tests the caller does not owe.
	ErrNotAssigned = errors.New("test is not assigned to this person")

	// ErrForbidden rejects operations outside the caller's capabilities.
	ErrForbidden = errors.New("operation not permitted for this role")

	ErrSessionNotFound    = errors.New("session not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrTestNotFound       = errors.New("test not found")

	// ErrSessionCompleted rejects writes to a session that already finished.
	ErrSessionCompleted = errors.New("session is already completed")

	// ErrAttemptLimitExceeded rejects new sessions past the assignment's
	// attempt budget.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded for this assignment")

	// ErrCatalogUnavailable means the test or its questions could not be
	// loaded at submit time. Submission must not be silently dropped; the
	// caller retries.
	ErrCatalogUnavailable = errors.New("test catalog unavailable")

	// ErrAnalyticsGenerationFailed wraps failures while deriving the
	// skill-gap analysis. The underlying result is never lost with it.
	ErrAnalyticsGenerationFailed = errors.New("skill gap analysis generation failed")

	// ErrInvalidTransition rejects assignment status moves outside the
	// ledger state machine.
	ErrInvalidTransition = errors.New("invalid assignment status transition")

	// ErrResultsHidden means the result exists but visibility is switched
	// off for the candidate.
	ErrResultsHidden = errors.New("results are not visible for this assignment")
)

// ===== STRUCTURED ERRORS =====

// PermissionError carries the who/what/why of a denied operation.
type PermissionError struct {
	PersonID   string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: person %s cannot %s %s %d: %s",
		e.PersonID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(personID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		PersonID:   personID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError marks a domain rule violation distinct from validation
// failures on the request shape.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

// IsPermissionError reports whether err is a permission denial of any shape.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrForbidden) || errors.As(err, &pe)
}
