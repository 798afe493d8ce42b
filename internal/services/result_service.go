package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ketan-bobby/skillpulse/internal/authz"
	"github.com/ketan-bobby/skillpulse/internal/events"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type resultService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	narrative NarrativeService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewResultService(repo repositories.Repository, publisher events.EventPublisher, narrative NarrativeService, logger *slog.Logger, validator *validator.Validator) ResultService {
	return &resultService{
		repo:      repo,
		publisher: publisher,
		narrative: narrative,
		logger:    logger,
		validator: validator,
	}
}

// ===== READ OPERATIONS =====

func (s *resultService) GetByID(ctx context.Context, id uint, callerID string) (*ResultResponse, error) {
	result, err := s.repo.Result().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := s.authorizeRead(ctx, result, callerID); err != nil {
		return nil, err
	}

	return &ResultResponse{TestResult: result, AnalysisAvailable: result.HasAnalysis()}, nil
}

func (s *resultService) GetByPerson(ctx context.Context, personID string, filters repositories.ResultFilters, callerID string) (*ResultListResponse, error) {
	if personID != callerID {
		role, err := s.callerRole(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !authz.Can(role, authz.CapViewAllResults) {
			return nil, NewPermissionError(callerID, 0, "result", "list", "cannot view other people's results")
		}
	}

	results, total, err := s.repo.Result().GetByPerson(ctx, personID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	// Candidates reading their own history only see results whose
	// assignment has visibility switched on.
	if personID == callerID {
		results, total = s.filterVisible(ctx, results)
	}

	return s.toListResponse(results, total, filters.Limit, filters.Offset), nil
}

func (s *resultService) List(ctx context.Context, filters repositories.ResultFilters, callerID string) (*ResultListResponse, error) {
	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(role, authz.CapViewAllResults) {
		return nil, NewPermissionError(callerID, 0, "result", "list", "insufficient role permissions")
	}

	results, total, err := s.repo.Result().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return s.toListResponse(results, total, filters.Limit, filters.Offset), nil
}

// ===== ANALYSIS OPERATIONS =====

func (s *resultService) GetAnalysis(ctx context.Context, resultID uint, callerID string) (*models.SkillGapAnalysis, error) {
	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := s.authorizeRead(ctx, result, callerID); err != nil {
		return nil, err
	}

	// Compute-if-absent: a stored analysis is immutable history and is
	// served unchanged.
	if result.HasAnalysis() {
		analysis := result.SkillGapAnalysis.Data()
		return &analysis, nil
	}

	analysis, err := s.computeAndStore(ctx, result)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *resultService) ForceRecompute(ctx context.Context, req *RecomputeAnalysisRequest, callerID string) ([]RecomputeOutcome, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(role, authz.CapRecomputeAnalysis) {
		return nil, NewPermissionError(callerID, 0, "result", "recompute_analysis", "insufficient role permissions")
	}

	s.logger.Info("Forcing analysis recompute",
		"result_count", len(req.ResultIDs),
		"person_id", callerID)

	outcomes := make([]RecomputeOutcome, 0, len(req.ResultIDs))
	for _, resultID := range req.ResultIDs {
		outcome := RecomputeOutcome{ResultID: resultID, OK: true}

		result, err := s.repo.Result().GetByID(ctx, resultID)
		if err != nil {
			outcome.OK = false
			if repositories.IsNotFoundError(err) {
				outcome.Error = ErrResultNotFound.Error()
			} else {
				outcome.Error = err.Error()
			}
			outcomes = append(outcomes, outcome)
			continue
		}

		if _, err := s.computeAndStore(ctx, result); err != nil {
			outcome.OK = false
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}

	s.publishRecomputed(ctx, req.ResultIDs)
	return outcomes, nil
}

// ===== HELPERS =====

// computeAndStore derives and persists the analysis. A failure here leaves
// the result row untouched; the score is never at risk.
func (s *resultService) computeAndStore(ctx context.Context, result *models.TestResult) (*models.SkillGapAnalysis, error) {
	test, err := s.repo.Catalog().GetTest(ctx, result.TestID)
	if err != nil {
		return nil, fmt.Errorf("%w: load test: %v", ErrAnalyticsGenerationFailed, err)
	}

	input := AnalysisInput{Result: result, Test: test}

	if session, err := s.repo.Session().GetByID(ctx, result.SessionID); err == nil {
		input.Events = session.ProctoringEvents
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("%w: load session: %v", ErrAnalyticsGenerationFailed, err)
	}
	if candidate, err := s.repo.User().GetByID(ctx, result.PersonID); err == nil {
		input.Candidate = candidate
	}

	analysis, err := Analyze(input)
	if err != nil {
		return nil, err
	}

	s.attachNarrative(ctx, analysis, test)

	if err := s.repo.Result().UpdateAnalysis(ctx, result.ID, analysis); err != nil {
		return nil, fmt.Errorf("%w: persist: %v", ErrAnalyticsGenerationFailed, err)
	}
	return analysis, nil
}

// attachNarrative folds an AI-written summary into the recommendations.
// Provider failure is logged and swallowed; the deterministic report stands
// on its own.
func (s *resultService) attachNarrative(ctx context.Context, analysis *models.SkillGapAnalysis, test *models.Test) {
	if s.narrative == nil {
		return
	}
	summary, err := s.narrative.Summarize(ctx, analysis, test)
	if err != nil {
		s.logger.Warn("Narrative generation failed, serving deterministic report",
			"domain", test.Domain, "error", err)
		return
	}
	if summary != "" {
		analysis.TrainingRecommendations = append(analysis.TrainingRecommendations, summary)
	}
}

func (s *resultService) authorizeRead(ctx context.Context, result *models.TestResult, callerID string) error {
	if result.PersonID == callerID {
		visible, err := s.resultVisible(ctx, result)
		if err != nil {
			return err
		}
		if !visible {
			return ErrResultsHidden
		}
		return nil
	}

	role, err := s.callerRole(ctx, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(role, authz.CapViewAllResults) {
		return NewPermissionError(callerID, result.ID, "result", "read", "not owner and cannot view all results")
	}
	return nil
}

// resultVisible resolves the assignment visibility toggle for the result's
// (person, test) pair. A missing assignment defaults to visible: results
// can outlive ledger cleanup.
func (s *resultService) resultVisible(ctx context.Context, result *models.TestResult) (bool, error) {
	assignment, err := s.repo.Assignment().GetByPersonAndTest(ctx, result.PersonID, result.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check visibility: %w", err)
	}
	return assignment.ResultsVisible, nil
}

func (s *resultService) filterVisible(ctx context.Context, results []*models.TestResult) ([]*models.TestResult, int64) {
	visible := make([]*models.TestResult, 0, len(results))
	for _, result := range results {
		ok, err := s.resultVisible(ctx, result)
		if err != nil {
			s.logger.Error("Visibility check failed, hiding result",
				"result_id", result.ID, "error", err)
			continue
		}
		if ok {
			visible = append(visible, result)
		}
	}
	return visible, int64(len(visible))
}

func (s *resultService) callerRole(ctx context.Context, callerID string) (models.UserRole, error) {
	role, err := s.repo.User().GetRole(ctx, callerID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller role: %w", err)
	}
	return role, nil
}

func (s *resultService) toListResponse(results []*models.TestResult, total int64, limit, offset int) *ResultListResponse {
	responses := make([]*ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, &ResultResponse{TestResult: result, AnalysisAvailable: result.HasAnalysis()})
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return &ResultListResponse{Results: responses, Total: total, Page: page, Size: len(responses)}
}

func (s *resultService) publishRecomputed(ctx context.Context, resultIDs []uint) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.TypeAnalysisRecomputed, map[string]interface{}{
		"result_ids": resultIDs,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish analysis recomputed event", "error", err)
	}
}
