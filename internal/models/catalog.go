package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
	LevelExpert       SkillLevel = "expert"
)

// DefaultPassingScore applies when a test does not declare its own.
const DefaultPassingScore = 70

// Test is the catalog entry for an assessment: domain, level and the
// passing threshold. The catalog is read-only from this service's point
// of view.
type Test struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null;size:200;index"`
	Domain         string     `json:"domain" gorm:"not null;size:100;index"`
	Level          SkillLevel `json:"level" gorm:"size:50"`
	PassingScore   int        `json:"passing_score"` // 0 means unset, DefaultPassingScore applies
	TotalQuestions int        `json:"total_questions"`
	Duration       int        `json:"duration"` // minutes

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

// EffectivePassingScore resolves the unset (zero) passing score to the default.
func (t *Test) EffectivePassingScore() int {
	if t.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return t.PassingScore
}

// Question carries the correct answer for scoring. Free-text and coding
// answers are assumed pre-reduced upstream; comparison is an exact,
// case-sensitive match.
type Question struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	TestID        uint   `json:"test_id" gorm:"not null;index"`
	Order         int    `json:"order" gorm:"column:question_order"`
	Text          string `json:"text" gorm:"type:text"`
	CorrectAnswer string `json:"correct_answer" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// uintKey is the JSON map key form of a question id.
func uintKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
