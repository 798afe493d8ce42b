package services

import (
	"context"
	"testing"

	"github.com/ketan-bobby/skillpulse/internal/events"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

// TestFullAssessmentLifecycle walks the whole flow: assignment, session
// start, submit, result, ledger completion and the derived analysis.
func TestFullAssessmentLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	v := validator.New()

	assignments := NewAssignmentService(repo, testLogger(), v)
	sessions := NewSessionService(repo, publisher, testLogger(), v)
	results := NewResultService(repo, publisher, nil, testLogger(), v)

	repo.addUser("person-1", models.RoleCandidate)
	repo.addUser("hr-1", models.RoleHRAdmin)
	repo.addTest(
		&models.Test{ID: 5, Title: "Platform Skills", Domain: "backend", Level: models.LevelIntermediate, PassingScore: 70, Duration: 45},
		&models.Question{ID: 1, TestID: 5, Order: 1, CorrectAnswer: "a"},
		&models.Question{ID: 2, TestID: 5, Order: 2, CorrectAnswer: "b"},
		&models.Question{ID: 3, TestID: 5, Order: 3, CorrectAnswer: "c"},
		&models.Question{ID: 4, TestID: 5, Order: 4, CorrectAnswer: "d"},
		&models.Question{ID: 5, TestID: 5, Order: 5, CorrectAnswer: "e"},
	)

	created, err := assignments.Create(ctx, &CreateAssignmentRequest{PersonID: "person-1", TestID: 5}, "hr-1")
	if err != nil {
		t.Fatalf("assignment create: %v", err)
	}
	if created.Status != models.AssignmentAssigned {
		t.Fatalf("assignment status = %v, want assigned", created.Status)
	}

	session, err := sessions.StartOrResume(ctx, &StartSessionRequest{TestID: 5}, "person-1")
	if err != nil {
		t.Fatalf("session start: %v", err)
	}
	if session.Status != models.SessionInProgress {
		t.Fatalf("session status = %v, want in_progress", session.Status)
	}

	submit, err := sessions.Submit(ctx, &SubmitSessionRequest{
		SessionID: session.ID,
		Answers:   map[string]string{"1": "a", "2": "b", "3": "c", "4": "d", "5": "e"},
	}, "person-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	result := submit.Result
	if result.Score != 5 || result.Percentage != 100 || !result.Passed {
		t.Fatalf("result = {score:%d, percentage:%d, passed:%v}, want {5, 100, true}",
			result.Score, result.Percentage, result.Passed)
	}

	assignment, err := repo.Assignment().GetByID(ctx, created.Assignment.ID)
	if err != nil {
		t.Fatalf("assignment lookup: %v", err)
	}
	if assignment.Status != models.AssignmentCompleted {
		t.Fatalf("assignment status after submit = %v, want completed", assignment.Status)
	}

	analysis, err := results.GetAnalysis(ctx, result.ID, "person-1")
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if analysis.SkillLevel != models.LevelExpert {
		t.Fatalf("skill level = %v, want expert at 100%%", analysis.SkillLevel)
	}
}
