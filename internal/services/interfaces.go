package services

import (
	"context"

	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateAssignmentRequest = validator.AssignmentCreateRequest
type UpdateAssignmentStatusRequest = validator.AssignmentStatusRequest
type ResultsVisibilityRequest = validator.ResultsVisibilityRequest
type StartSessionRequest = validator.StartSessionRequest
type ProctoringEventRequest = validator.ProctoringEventRequest
type SaveAnswerRequest = validator.SaveAnswerRequest
type SubmitSessionRequest = validator.SubmitSessionRequest
type RecomputeAnalysisRequest = validator.RecomputeAnalysisRequest

type AssignmentResponse struct {
	*models.Assignment
	CanStart  bool `json:"can_start"`
	CanManage bool `json:"can_manage"`
	IsOverdue bool `json:"is_overdue"`
}

type AssignmentListResponse struct {
	Assignments []*AssignmentResponse `json:"assignments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type SessionResponse struct {
	*models.TestSession
	Resumed   bool `json:"resumed"`
	CanSubmit bool `json:"can_submit"`
}

// SubmitResponse reports the durable outcome of a submit. AlreadyCompleted
// is informational: a retried submit is answered with the stored result,
// never with an error.
type SubmitResponse struct {
	Result           *models.TestResult `json:"result"`
	AlreadyCompleted bool               `json:"already_completed"`
}

type ResultResponse struct {
	*models.TestResult
	AnalysisAvailable bool `json:"analysis_available"`
}

type ResultListResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

// RecomputeOutcome is the per-result outcome of a forced recompute; one
// failure never aborts the batch.
type RecomputeOutcome struct {
	ResultID uint   `json:"result_id"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// ===== REPORTING DTOs =====

type DomainReportRow struct {
	Domain       string  `json:"domain"`
	Results      int     `json:"results"`
	AverageScore int     `json:"average_score"`
	PassRate     float64 `json:"pass_rate"`
}

type PersonReport struct {
	PersonID           string                   `json:"person_id"`
	TotalResults       int                      `json:"total_results"`
	AverageScore       int                      `json:"average_score"`
	Domains            []DomainReportRow        `json:"domains"`
	TrainingPriorities []string                 `json:"training_priorities"`
	LatestAnalysis     *models.SkillGapAnalysis `json:"latest_analysis,omitempty"`
	Results            []*models.TestResult     `json:"results"`
}

// ===== SERVICE INTERFACES =====

type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, callerID string) (*AssignmentResponse, error)
	GetByID(ctx context.Context, id uint, callerID string) (*AssignmentResponse, error)
	List(ctx context.Context, filters repositories.AssignmentFilters, callerID string) (*AssignmentListResponse, error)
	GetStats(ctx context.Context, callerID string) (*repositories.AssignmentStats, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, req *UpdateAssignmentStatusRequest, callerID string) error

	// Visibility toggle; admin action, independent of status.
	SetResultsVisibility(ctx context.Context, id uint, req *ResultsVisibilityRequest, callerID string) error
}

type SessionService interface {
	// StartOrResume returns the existing in_progress session for
	// (caller, test) or creates one. Identical concurrent calls converge
	// on the same session id.
	StartOrResume(ctx context.Context, req *StartSessionRequest, callerID string) (*SessionResponse, error)

	RecordProctoringEvent(ctx context.Context, sessionID uint, req *ProctoringEventRequest, callerID string) error
	SaveAnswer(ctx context.Context, sessionID uint, questionID uint, answer string, callerID string) error

	// Submit scores the session, records the result idempotently and
	// completes the assignment. Retries return the stored outcome.
	Submit(ctx context.Context, req *SubmitSessionRequest, callerID string) (*SubmitResponse, error)

	GetByID(ctx context.Context, sessionID uint, callerID string) (*SessionResponse, error)
}

type ResultService interface {
	GetByID(ctx context.Context, id uint, callerID string) (*ResultResponse, error)
	GetByPerson(ctx context.Context, personID string, filters repositories.ResultFilters, callerID string) (*ResultListResponse, error)
	List(ctx context.Context, filters repositories.ResultFilters, callerID string) (*ResultListResponse, error)

	// GetAnalysis computes the skill-gap report when absent, persists it
	// and returns it. Present analyses are served unchanged.
	GetAnalysis(ctx context.Context, resultID uint, callerID string) (*models.SkillGapAnalysis, error)

	// ForceRecompute overwrites analyses for the given results, reporting
	// per-result outcomes. The score columns are never touched.
	ForceRecompute(ctx context.Context, req *RecomputeAnalysisRequest, callerID string) ([]RecomputeOutcome, error)
}

type ReportService interface {
	PersonReport(ctx context.Context, personID string, callerID string) (*PersonReport, error)
	DomainReport(ctx context.Context, callerID string) ([]DomainReportRow, error)

	// ExportPersonReport renders the person report as an xlsx workbook.
	ExportPersonReport(ctx context.Context, personID string, callerID string) ([]byte, error)
}

// NarrativeService produces an optional prose summary of an analysis via
// the configured AI providers. Failures degrade to an empty narrative.
type NarrativeService interface {
	Summarize(ctx context.Context, analysis *models.SkillGapAnalysis, test *models.Test) (string, error)
}
