package models

import (
	"time"

	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentStarted   AssignmentStatus = "started"
	AssignmentCompleted AssignmentStatus = "completed"
)

// Assignment records that a person owes a particular test.
type Assignment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PersonID string `json:"person_id" gorm:"not null;index;size:255;uniqueIndex:idx_person_test_assignment"`
	TestID   uint   `json:"test_id" gorm:"not null;index;uniqueIndex:idx_person_test_assignment"`

	Status AssignmentStatus `json:"status" gorm:"default:assigned;index"`

	ScheduledAt *time.Time `json:"scheduled_at"`
	DueDate     *time.Time `json:"due_date"`
	TimeLimit   int        `json:"time_limit"` // minutes
	MaxAttempts int        `json:"max_attempts" gorm:"default:1"`

	// Controls whether the candidate may read their own result.
	ResultsVisible bool `json:"results_visible" gorm:"default:true"`

	AssignedBy string         `json:"assigned_by" gorm:"index;size:255"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Test Test `json:"test" gorm:"foreignKey:TestID"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// IsTerminal reports whether the assignment has reached its final status.
func (a *Assignment) IsTerminal() bool {
	return a.Status == AssignmentCompleted
}

// CanTransitionTo returns true for the allowed ledger transitions.
// assigned→started, started→completed and the direct assigned→completed
// (resumed-after-restart flows) are the only legal moves.
func (a *Assignment) CanTransitionTo(next AssignmentStatus) bool {
	switch a.Status {
	case AssignmentAssigned:
		return next == AssignmentStarted || next == AssignmentCompleted
	case AssignmentStarted:
		return next == AssignmentCompleted
	default:
		return false
	}
}
