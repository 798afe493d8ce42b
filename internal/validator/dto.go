package validator

import (
	"time"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

// AssignmentCreateRequest creates one ledger entry: person owes test.
type AssignmentCreateRequest struct {
	PersonID    string     `json:"person_id" validate:"required,max=255"`
	TestID      uint       `json:"test_id" validate:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	DueDate     *time.Time `json:"due_date"`
	TimeLimit   int        `json:"time_limit" validate:"omitempty,min=5,max=300"` // minutes
	MaxAttempts int        `json:"max_attempts" validate:"omitempty,min=1,max=10"`
}

// AssignmentStatusRequest moves an assignment through the ledger state machine.
type AssignmentStatusRequest struct {
	Status models.AssignmentStatus `json:"status" validate:"required,assignment_status"`
}

// ResultsVisibilityRequest toggles candidate access to their own result.
type ResultsVisibilityRequest struct {
	Visible bool `json:"visible"`
}

// StartSessionRequest starts or resumes the caller's attempt at a test.
type StartSessionRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

// ProctoringEventRequest appends one integrity signal to a session.
type ProctoringEventRequest struct {
	Type      string                    `json:"type" validate:"required,max=100"`
	Timestamp time.Time                 `json:"timestamp" validate:"required"`
	Severity  models.ProctoringSeverity `json:"severity" validate:"proctoring_severity"`
	Details   string                    `json:"details" validate:"omitempty,max=2000"`
}

// SaveAnswerRequest stores one draft answer on an active session.
type SaveAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"max=10000"`
}

// SubmitSessionRequest completes a session and hands off to scoring.
type SubmitSessionRequest struct {
	SessionID        uint                     `json:"session_id" validate:"required"`
	Answers          map[string]string        `json:"answers" validate:"required"`
	TimeSpentSeconds int                      `json:"time_spent_seconds" validate:"omitempty,min=0"`
	Events           []ProctoringEventRequest `json:"events" validate:"omitempty,dive"`
}

// RecomputeAnalysisRequest forces skill-gap recomputation across results.
type RecomputeAnalysisRequest struct {
	ResultIDs []uint `json:"result_ids" validate:"required,min=1"`
}
