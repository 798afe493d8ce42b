package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type assignmentFixture struct {
	repo    *mockRepository
	service AssignmentService
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	repo := newMockRepository()
	service := NewAssignmentService(repo, testLogger(), validator.New())

	repo.addUser("candidate-1", models.RoleCandidate)
	repo.addUser("manager-1", models.RoleManager)
	repo.addUser("hr-1", models.RoleHRAdmin)
	repo.addTest(&models.Test{ID: 5, Domain: "backend", Level: models.LevelIntermediate, Duration: 30})
	return &assignmentFixture{repo: repo, service: service}
}

func TestCreateAssignment(t *testing.T) {
	f := newAssignmentFixture(t)

	resp, err := f.service.Create(context.Background(), &CreateAssignmentRequest{
		PersonID:    "candidate-1",
		TestID:      5,
		MaxAttempts: 2,
	}, "hr-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if resp.Status != models.AssignmentAssigned {
		t.Errorf("Status = %v, want assigned", resp.Status)
	}
	if !resp.ResultsVisible {
		t.Error("ResultsVisible = false, want visible by default")
	}
	if resp.AssignedBy != "hr-1" {
		t.Errorf("AssignedBy = %q, want hr-1", resp.AssignedBy)
	}
}

func TestCreateAssignmentRequiresCapability(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.Create(context.Background(), &CreateAssignmentRequest{
		PersonID: "candidate-1",
		TestID:   5,
	}, "candidate-1")
	if !IsPermissionError(err) {
		t.Fatalf("Create() by candidate: error = %v, want permission error", err)
	}
}

func TestCreateAssignmentRejectsDuplicate(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	req := &CreateAssignmentRequest{PersonID: "candidate-1", TestID: 5}
	if _, err := f.service.Create(ctx, req, "hr-1"); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := f.service.Create(ctx, req, "hr-1")
	var ruleErr *BusinessRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("duplicate Create() error = %v, want BusinessRuleError", err)
	}
}

func TestCreateAssignmentUnknownTest(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.Create(context.Background(), &CreateAssignmentRequest{
		PersonID: "candidate-1",
		TestID:   777,
	}, "hr-1")
	if !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("Create() error = %v, want ErrTestNotFound", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.AssignmentStatus
		to      models.AssignmentStatus
		wantErr bool
	}{
		{"assigned to started", models.AssignmentAssigned, models.AssignmentStarted, false},
		{"started to completed", models.AssignmentStarted, models.AssignmentCompleted, false},
		{"assigned straight to completed", models.AssignmentAssigned, models.AssignmentCompleted, false},
		{"completed is terminal", models.AssignmentCompleted, models.AssignmentStarted, true},
		{"started cannot revert", models.AssignmentStarted, models.AssignmentAssigned, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssignmentFixture(t)
			assignment := f.repo.addAssignment(&models.Assignment{
				PersonID: "candidate-1",
				TestID:   5,
				Status:   tt.from,
			})

			err := f.service.UpdateStatus(context.Background(), assignment.ID,
				&UpdateAssignmentStatusRequest{Status: tt.to}, "hr-1")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("UpdateStatus() error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() error = %v", err)
			}

			updated, err := f.repo.Assignment().GetByID(context.Background(), assignment.ID)
			if err != nil {
				t.Fatalf("assignment lookup failed: %v", err)
			}
			if updated.Status != tt.to {
				t.Errorf("status = %v, want %v", updated.Status, tt.to)
			}
		})
	}
}

func TestUpdateStatusRequiresManageCapability(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.repo.addAssignment(&models.Assignment{
		PersonID: "candidate-1",
		TestID:   5,
		Status:   models.AssignmentAssigned,
	})

	// Managers can assign but not manage the ledger state machine.
	err := f.service.UpdateStatus(context.Background(), assignment.ID,
		&UpdateAssignmentStatusRequest{Status: models.AssignmentStarted}, "manager-1")
	if !IsPermissionError(err) {
		t.Fatalf("UpdateStatus() by manager: error = %v, want permission error", err)
	}
}

func TestSetResultsVisibility(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	assignment := f.repo.addAssignment(&models.Assignment{
		PersonID:       "candidate-1",
		TestID:         5,
		Status:         models.AssignmentCompleted,
		ResultsVisible: true,
	})

	err := f.service.SetResultsVisibility(ctx, assignment.ID, &ResultsVisibilityRequest{Visible: false}, "hr-1")
	if err != nil {
		t.Fatalf("SetResultsVisibility() error = %v", err)
	}

	updated, err := f.repo.Assignment().GetByID(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("assignment lookup failed: %v", err)
	}
	if updated.ResultsVisible {
		t.Error("ResultsVisible = true after hide")
	}
	if updated.Status != models.AssignmentCompleted {
		t.Errorf("status changed by visibility toggle: %v", updated.Status)
	}

	if err := f.service.SetResultsVisibility(ctx, assignment.ID, &ResultsVisibilityRequest{Visible: true}, "hr-1"); err != nil {
		t.Fatalf("re-show error = %v", err)
	}
}

func TestSetResultsVisibilityRequiresCapability(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.repo.addAssignment(&models.Assignment{
		PersonID: "candidate-1",
		TestID:   5,
		Status:   models.AssignmentAssigned,
	})

	err := f.service.SetResultsVisibility(context.Background(), assignment.ID,
		&ResultsVisibilityRequest{Visible: false}, "candidate-1")
	if !IsPermissionError(err) {
		t.Fatalf("SetResultsVisibility() by candidate: error = %v, want permission error", err)
	}
}

func TestListScopesCandidateToOwnRows(t *testing.T) {
	f := newAssignmentFixture(t)
	f.repo.addUser("candidate-2", models.RoleCandidate)
	f.repo.addAssignment(&models.Assignment{PersonID: "candidate-1", TestID: 5, Status: models.AssignmentAssigned})
	f.repo.addAssignment(&models.Assignment{PersonID: "candidate-2", TestID: 5, Status: models.AssignmentAssigned})

	resp, err := f.service.List(context.Background(), repositories.AssignmentFilters{}, "candidate-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("candidate list Total = %d, want own row only", resp.Total)
	}

	managerResp, err := f.service.List(context.Background(), repositories.AssignmentFilters{}, "manager-1")
	if err != nil {
		t.Fatalf("List() by manager error = %v", err)
	}
	if managerResp.Total != 2 {
		t.Errorf("manager list Total = %d, want 2", managerResp.Total)
	}
}
