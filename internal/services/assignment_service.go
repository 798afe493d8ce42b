package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ketan-bobby/skillpulse/internal/authz"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type assignmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE OPERATIONS =====

func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, callerID string) (*AssignmentResponse, error) {
	s.logger.Info("Creating assignment",
		"person_id", req.PersonID,
		"test_id", req.TestID,
		"assigned_by", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(role, authz.CapAssignTest) {
		return nil, NewPermissionError(callerID, req.TestID, "assignment", "create", "insufficient role permissions")
	}

	if _, err := s.repo.Catalog().GetTest(ctx, req.TestID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if _, err := s.repo.User().GetByID(ctx, req.PersonID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewBusinessRuleError("assignee_exists", fmt.Sprintf("person %s not found in directory", req.PersonID))
		}
		return nil, fmt.Errorf("failed to verify assignee: %w", err)
	}

	if existing, err := s.repo.Assignment().GetByPersonAndTest(ctx, req.PersonID, req.TestID); err == nil {
		return nil, NewBusinessRuleError("unique_assignment",
			fmt.Sprintf("person %s already has assignment %d for test %d", req.PersonID, existing.ID, req.TestID))
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	assignment := &models.Assignment{
		PersonID:       req.PersonID,
		TestID:         req.TestID,
		Status:         models.AssignmentAssigned,
		ScheduledAt:    req.ScheduledAt,
		DueDate:        req.DueDate,
		TimeLimit:      req.TimeLimit,
		MaxAttempts:    maxAttempts,
		ResultsVisible: true,
		AssignedBy:     callerID,
	}

	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("Assignment created", "assignment_id", assignment.ID)
	return s.toResponse(assignment, role, callerID), nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint, callerID string) (*AssignmentResponse, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if assignment.PersonID != callerID && !authz.Can(role, authz.CapViewAllResults) {
		return nil, NewPermissionError(callerID, id, "assignment", "read", "not assignee and cannot view all")
	}

	return s.toResponse(assignment, role, callerID), nil
}

func (s *assignmentService) List(ctx context.Context, filters repositories.AssignmentFilters, callerID string) (*AssignmentListResponse, error) {
	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// Callers without the view-all capability only ever see their own rows.
	if !authz.Can(role, authz.CapViewAllResults) {
		filters.PersonID = &callerID
	}

	assignments, total, err := s.repo.Assignment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]*AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, s.toResponse(assignment, role, callerID))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}
	return &AssignmentListResponse{Assignments: responses, Total: total, Page: page, Size: len(responses)}, nil
}

func (s *assignmentService) GetStats(ctx context.Context, callerID string) (*repositories.AssignmentStats, error) {
	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var personID *string
	if !authz.Can(role, authz.CapViewAllResults) {
		personID = &callerID
	}
	return s.repo.Assignment().GetStats(ctx, personID)
}

// ===== STATUS MANAGEMENT =====

func (s *assignmentService) UpdateStatus(ctx context.Context, id uint, req *UpdateAssignmentStatusRequest, callerID string) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(role, authz.CapManageAssignment) {
		return NewPermissionError(callerID, id, "assignment", "update_status", "insufficient role permissions")
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	if !assignment.CanTransitionTo(req.Status) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, assignment.Status, req.Status)
	}

	assignment.Status = req.Status
	if err := s.repo.Assignment().Update(ctx, assignment); err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}

	s.logger.Info("Assignment status updated",
		"assignment_id", id, "status", req.Status, "person_id", callerID)
	return nil
}

// SetResultsVisibility flips the candidate-facing visibility switch. It is
// valid in every assignment status, including completed.
func (s *assignmentService) SetResultsVisibility(ctx context.Context, id uint, req *ResultsVisibilityRequest, callerID string) error {
	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(role, authz.CapManageAssignment) {
		return NewPermissionError(callerID, id, "assignment", "set_visibility", "insufficient role permissions")
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	assignment.ResultsVisible = req.Visible
	if err := s.repo.Assignment().Update(ctx, assignment); err != nil {
		return fmt.Errorf("failed to update visibility: %w", err)
	}

	s.logger.Info("Assignment visibility updated",
		"assignment_id", id, "visible", req.Visible, "person_id", callerID)
	return nil
}

// ===== HELPERS =====

func (s *assignmentService) callerRole(ctx context.Context, callerID string) (models.UserRole, error) {
	role, err := s.repo.User().GetRole(ctx, callerID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller role: %w", err)
	}
	return role, nil
}

func (s *assignmentService) toResponse(assignment *models.Assignment, role models.UserRole, callerID string) *AssignmentResponse {
	overdue := assignment.DueDate != nil &&
		assignment.Status != models.AssignmentCompleted &&
		time.Now().After(*assignment.DueDate)

	return &AssignmentResponse{
		Assignment: assignment,
		CanStart:   assignment.PersonID == callerID && !assignment.IsTerminal(),
		CanManage:  authz.Can(role, authz.CapManageAssignment),
		IsOverdue:  overdue,
	}
}
