package repositories

import (
	"context"
	"time"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

// ===== FILTERS =====

type AssignmentFilters struct {
	PersonID  *string                  `json:"person_id"`
	TestID    *uint                    `json:"test_id"`
	Status    *models.AssignmentStatus `json:"status"`
	DueBefore *time.Time               `json:"due_before"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "due_date"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	PersonID  *string    `json:"person_id"`
	TestID    *uint      `json:"test_id"`
	Passed    *bool      `json:"passed"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// ===== STATISTICS =====

type AssignmentStats struct {
	Total     int `json:"total"`
	Assigned  int `json:"assigned"`
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// ===== REPOSITORY INTERFACES =====

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uint) (*models.Assignment, error)
	GetByPersonAndTest(ctx context.Context, personID string, testID uint) (*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	List(ctx context.Context, filters AssignmentFilters) ([]*models.Assignment, int64, error)
	GetStats(ctx context.Context, personID *string) (*AssignmentStats, error)
}

type SessionRepository interface {
	// CreateOrGetActive inserts the session guarded by the partial unique
	// index on (person_id, test_id) WHERE status = 'in_progress'. When a
	// concurrent call won the race, created is false and session is
	// overwritten with the existing active row. Never read-then-write.
	CreateOrGetActive(ctx context.Context, session *models.TestSession) (created bool, err error)

	GetByID(ctx context.Context, id uint) (*models.TestSession, error)
	GetActive(ctx context.Context, personID string, testID uint) (*models.TestSession, error)
	Update(ctx context.Context, session *models.TestSession) error
	CountCompleted(ctx context.Context, personID string, testID uint) (int64, error)
	GetByPerson(ctx context.Context, personID string) ([]*models.TestSession, error)
}

type ResultRepository interface {
	// CreateIdempotent inserts the result guarded by the unique index on
	// session_id, using insert-or-fetch-on-conflict. When a result already
	// exists for the session, created is false and result is overwritten
	// with the existing row — never a duplicate, never an error.
	CreateIdempotent(ctx context.Context, result *models.TestResult) (created bool, err error)

	GetByID(ctx context.Context, id uint) (*models.TestResult, error)
	GetBySession(ctx context.Context, sessionID uint) (*models.TestResult, error)
	GetByPerson(ctx context.Context, personID string, filters ResultFilters) ([]*models.TestResult, int64, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.TestResult, int64, error)

	// UpdateAnalysis persists the skill-gap analysis column only; the
	// scoring columns are immutable once written.
	UpdateAnalysis(ctx context.Context, resultID uint, analysis *models.SkillGapAnalysis) error
}

type CatalogRepository interface {
	GetTest(ctx context.Context, testID uint) (*models.Test, error)
	GetQuestions(ctx context.Context, testID uint) ([]*models.Question, error)
	ListTests(ctx context.Context) ([]*models.Test, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetRole(ctx context.Context, id string) (models.UserRole, error)
}
