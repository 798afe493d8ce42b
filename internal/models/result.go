package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestResult is the durable outcome of one completed session. The unique
// index on SessionID is the idempotency key: concurrent or retried submits
// insert with ON CONFLICT DO NOTHING and the loser reads the winner's row.
type TestResult struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	PersonID  string `json:"person_id" gorm:"not null;index;size:255"`
	TestID    uint   `json:"test_id" gorm:"not null;index"`
	SessionID uint   `json:"session_id" gorm:"not null;uniqueIndex"`

	Score          int  `json:"score"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
	TimeSpent      int  `json:"time_spent"` // seconds
	TotalQuestions int  `json:"total_questions"`
	CorrectAnswers int  `json:"correct_answers"`

	// Derived report; nullable. Compute-if-absent, immutable history except
	// under an explicit force-recompute. Never carries score data.
	SkillGapAnalysis *datatypes.JSONType[SkillGapAnalysis] `json:"skill_gap_analysis" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Test    Test        `json:"test" gorm:"foreignKey:TestID"`
	Session TestSession `json:"session" gorm:"foreignKey:SessionID"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// HasAnalysis reports whether a skill-gap analysis is already attached.
func (r *TestResult) HasAnalysis() bool {
	return r.SkillGapAnalysis != nil
}
