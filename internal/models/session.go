package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

type ProctoringSeverity string

const (
	SeverityLow    ProctoringSeverity = "low"
	SeverityMedium ProctoringSeverity = "medium"
	SeverityHigh   ProctoringSeverity = "high"
)

// ProctoringEvent is a timestamped integrity signal captured during a
// session. Events are append-only and never deduplicated: repeated
// violations are meaningful signal for the security analysis.
type ProctoringEvent struct {
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Severity  ProctoringSeverity `json:"severity,omitempty"`
	Details   string             `json:"details,omitempty"`
}

// TestSession is one attempt at a test: in-progress answers plus the
// proctoring event stream. Sessions are created once per distinct attempt,
// resumed while in_progress and never deleted. The partial unique index on
// (person_id, test_id) WHERE status = 'in_progress' is created in
// pkg.InitDatabase; it is what guarantees at most one active attempt per
// person and test under concurrent start calls.
type TestSession struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	PersonID     string `json:"person_id" gorm:"not null;index;size:255"`
	TestID       uint   `json:"test_id" gorm:"not null;index"`
	AssignmentID *uint  `json:"assignment_id" gorm:"index"`

	Status SessionStatus `json:"status" gorm:"default:in_progress;index"`

	// question id (as string key) -> submitted answer
	Answers datatypes.JSONMap `json:"answers" gorm:"type:jsonb"`

	// ordered as received; each event carries its own timestamp
	ProctoringEvents datatypes.JSONSlice[ProctoringEvent] `json:"proctoring_events" gorm:"type:jsonb"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	TimeSpent   int        `json:"time_spent"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignment *Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

// AnswerFor returns the stored answer for a question, empty when unanswered.
func (s *TestSession) AnswerFor(questionID uint) (string, bool) {
	if s.Answers == nil {
		return "", false
	}
	v, ok := s.Answers[uintKey(questionID)]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}
