package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/ketan-bobby/skillpulse/internal/events"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSessionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) SessionService {
	return &sessionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE SESSION OPERATIONS =====

func (s *sessionService) StartOrResume(ctx context.Context, req *StartSessionRequest, callerID string) (*SessionResponse, error) {
	s.logger.Info("Starting or resuming session",
		"test_id", req.TestID,
		"person_id", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	assignment, err := s.repo.Assignment().GetByPersonAndTest(ctx, callerID, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotAssigned
		}
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	if _, err := s.repo.Catalog().GetTest(ctx, req.TestID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	// Enforce the attempt budget before creating a fresh session. A live
	// in_progress session is always resumable regardless of the budget.
	if assignment.MaxAttempts > 0 {
		if _, err := s.repo.Session().GetActive(ctx, callerID, req.TestID); err != nil {
			if !repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("failed to check active session: %w", err)
			}
			completed, err := s.repo.Session().CountCompleted(ctx, callerID, req.TestID)
			if err != nil {
				return nil, fmt.Errorf("failed to count attempts: %w", err)
			}
			if completed >= int64(assignment.MaxAttempts) {
				return nil, ErrAttemptLimitExceeded
			}
		}
	}

	session := &models.TestSession{
		PersonID:         callerID,
		TestID:           req.TestID,
		AssignmentID:     &assignment.ID,
		Status:           models.SessionInProgress,
		Answers:          datatypes.JSONMap{},
		ProctoringEvents: datatypes.JSONSlice[models.ProctoringEvent]{},
		StartedAt:        time.Now().UTC(),
	}

	created, err := s.repo.Session().CreateOrGetActive(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if created && assignment.CanTransitionTo(models.AssignmentStarted) {
		assignment.Status = models.AssignmentStarted
		if err := s.repo.Assignment().Update(ctx, assignment); err != nil {
			s.logger.Error("Failed to mark assignment started",
				"assignment_id", assignment.ID, "error", err)
		}
	}

	if !created {
		s.logger.Info("Resuming existing session", "session_id", session.ID)
	} else {
		s.logger.Info("Session started", "session_id", session.ID)
	}

	return &SessionResponse{
		TestSession: session,
		Resumed:     !created,
		CanSubmit:   session.Status == models.SessionInProgress,
	}, nil
}

func (s *sessionService) RecordProctoringEvent(ctx context.Context, sessionID uint, req *ProctoringEventRequest, callerID string) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	session, err := s.ownedActiveSession(ctx, sessionID, callerID, "record_proctoring_event")
	if err != nil {
		return err
	}

	session.ProctoringEvents = append(session.ProctoringEvents, models.ProctoringEvent{
		Type:      req.Type,
		Timestamp: req.Timestamp,
		Severity:  req.Severity,
		Details:   req.Details,
	})

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return fmt.Errorf("failed to record proctoring event: %w", err)
	}
	return nil
}

func (s *sessionService) SaveAnswer(ctx context.Context, sessionID uint, questionID uint, answer string, callerID string) error {
	session, err := s.ownedActiveSession(ctx, sessionID, callerID, "save_answer")
	if err != nil {
		return err
	}

	if session.Answers == nil {
		session.Answers = datatypes.JSONMap{}
	}
	session.Answers[questionKey(questionID)] = answer

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}

func (s *sessionService) Submit(ctx context.Context, req *SubmitSessionRequest, callerID string) (*SubmitResponse, error) {
	s.logger.Info("Submitting session",
		"session_id", req.SessionID,
		"person_id", callerID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	session, err := s.repo.Session().GetByID(ctx, req.SessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.PersonID != callerID {
		return nil, NewPermissionError(callerID, req.SessionID, "session", "submit", "not owned by caller")
	}

	// A retried submit for a completed session answers with the stored
	// result. When the result row is missing (crash between the session
	// update and the insert) the flow below repairs it.
	if session.Status == models.SessionCompleted {
		if result, err := s.repo.Result().GetBySession(ctx, session.ID); err == nil {
			return &SubmitResponse{Result: result, AlreadyCompleted: true}, nil
		} else if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get result: %w", err)
		}
	}

	// Complete the session before touching the catalog: submit is terminal,
	// and a catalog outage must leave the session completed-but-unscored so
	// the repair path above scores it on retry. Answers and events merged at
	// completion are the ones scored, now or later.
	if session.Status == models.SessionInProgress {
		now := time.Now().UTC()
		timeSpent := req.TimeSpentSeconds
		if timeSpent <= 0 {
			timeSpent = int(time.Since(session.StartedAt).Seconds())
		}
		session.Status = models.SessionCompleted
		session.CompletedAt = &now
		session.TimeSpent = timeSpent
		session.Answers = toJSONMap(s.mergeAnswers(session, req.Answers))
		for _, ev := range req.Events {
			session.ProctoringEvents = append(session.ProctoringEvents, models.ProctoringEvent{
				Type:      ev.Type,
				Timestamp: ev.Timestamp,
				Severity:  ev.Severity,
				Details:   ev.Details,
			})
		}
		if err := s.repo.Session().Update(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to complete session: %w", err)
		}
	}

	test, err := s.repo.Catalog().GetTest(ctx, session.TestID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	questions, err := s.repo.Catalog().GetQuestions(ctx, session.TestID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	answers := s.mergeAnswers(session, req.Answers)
	outcome := ScoreAnswers(questions, answers, test.EffectivePassingScore())

	result := &models.TestResult{
		PersonID:       session.PersonID,
		TestID:         session.TestID,
		SessionID:      session.ID,
		Score:          outcome.CorrectAnswers,
		Percentage:     outcome.Percentage,
		Passed:         outcome.Passed,
		TimeSpent:      session.TimeSpent,
		TotalQuestions: outcome.TotalQuestions,
		CorrectAnswers: outcome.CorrectAnswers,
	}

	var created bool
	var completedAssignment *models.Assignment
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		created, err = txRepo.Result().CreateIdempotent(ctx, result)
		if err != nil {
			return fmt.Errorf("failed to record result: %w", err)
		}

		completedAssignment, err = s.completeAssignment(ctx, txRepo, session)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit session transaction: %w", err)
	}

	// Events ride after the commit; state that never persisted must never
	// be announced.
	if created {
		s.publishResultCreated(ctx, session, result)
	}
	if completedAssignment != nil {
		s.publishAssignmentCompleted(ctx, completedAssignment)
	}

	s.logger.Info("Session submitted",
		"session_id", session.ID,
		"result_id", result.ID,
		"percentage", result.Percentage,
		"passed", result.Passed,
		"replayed", !created)

	return &SubmitResponse{Result: result, AlreadyCompleted: !created}, nil
}

func (s *sessionService) GetByID(ctx context.Context, sessionID uint, callerID string) (*SessionResponse, error) {
	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.PersonID != callerID {
		return nil, NewPermissionError(callerID, sessionID, "session", "read", "not owned by caller")
	}

	return &SessionResponse{
		TestSession: session,
		Resumed:     session.Status == models.SessionInProgress,
		CanSubmit:   session.Status == models.SessionInProgress,
	}, nil
}

// ===== HELPERS =====

func (s *sessionService) ownedActiveSession(ctx context.Context, sessionID uint, callerID, action string) (*models.TestSession, error) {
	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.PersonID != callerID {
		return nil, NewPermissionError(callerID, sessionID, "session", action, "not owned by caller")
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrSessionCompleted
	}
	return session, nil
}

// mergeAnswers overlays the submit payload on answers already saved during
// the session. Submitted values win.
func (s *sessionService) mergeAnswers(session *models.TestSession, submitted map[string]string) map[string]string {
	merged := make(map[string]string, len(session.Answers)+len(submitted))
	for key, value := range session.Answers {
		if str, ok := value.(string); ok {
			merged[key] = str
		}
	}
	for key, value := range submitted {
		merged[key] = value
	}
	return merged
}

// completeAssignment moves the ledger entry to completed inside the submit
// transaction and hands the updated row back so the caller can announce it
// after the commit.
func (s *sessionService) completeAssignment(ctx context.Context, txRepo repositories.Repository, session *models.TestSession) (*models.Assignment, error) {
	if session.AssignmentID == nil {
		return nil, nil
	}

	assignment, err := txRepo.Assignment().GetByID(ctx, *session.AssignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if !assignment.CanTransitionTo(models.AssignmentCompleted) {
		return nil, nil // already completed by an earlier submit
	}

	assignment.Status = models.AssignmentCompleted
	if err := txRepo.Assignment().Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to complete assignment: %w", err)
	}
	return assignment, nil
}

func (s *sessionService) publishResultCreated(ctx context.Context, session *models.TestSession, result *models.TestResult) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.TypeResultCreated, events.ResultCreatedEvent{
		ResultID:   result.ID,
		PersonID:   result.PersonID,
		TestID:     result.TestID,
		SessionID:  session.ID,
		Percentage: result.Percentage,
		Passed:     result.Passed,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish result created event",
			"result_id", result.ID, "error", err)
	}
}

func (s *sessionService) publishAssignmentCompleted(ctx context.Context, assignment *models.Assignment) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.TypeAssignmentCompleted, events.AssignmentCompletedEvent{
		AssignmentID: assignment.ID,
		PersonID:     assignment.PersonID,
		TestID:       assignment.TestID,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish assignment completed event",
			"assignment_id", assignment.ID, "error", err)
	}
}

func toJSONMap(answers map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range answers {
		out[key] = value
	}
	return out
}
