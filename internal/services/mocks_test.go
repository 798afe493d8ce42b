package services

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/datatypes"

	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

// mockRepository is an in-memory repositories.Repository for service tests.
// Transactions run the callback against the same store; the tests exercise
// service logic, not SQL.
type mockRepository struct {
	mu sync.Mutex

	assignments map[uint]*models.Assignment
	sessions    map[uint]*models.TestSession
	results     map[uint]*models.TestResult
	tests       map[uint]*models.Test
	questions   map[uint][]*models.Question
	users       map[string]*models.User

	nextAssignmentID uint
	nextSessionID    uint
	nextResultID     uint

	failCatalog     bool
	failResultWrite bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		assignments:      make(map[uint]*models.Assignment),
		sessions:         make(map[uint]*models.TestSession),
		results:          make(map[uint]*models.TestResult),
		tests:            make(map[uint]*models.Test),
		questions:        make(map[uint][]*models.Question),
		users:            make(map[string]*models.User),
		nextAssignmentID: 1,
		nextSessionID:    1,
		nextResultID:     1,
	}
}

func (m *mockRepository) Assignment() repositories.AssignmentRepository { return (*mockAssignments)(m) }
func (m *mockRepository) Session() repositories.SessionRepository       { return (*mockSessions)(m) }
func (m *mockRepository) Result() repositories.ResultRepository         { return (*mockResults)(m) }
func (m *mockRepository) Catalog() repositories.CatalogRepository       { return (*mockCatalog)(m) }
func (m *mockRepository) User() repositories.UserRepository             { return (*mockUsers)(m) }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== ASSIGNMENTS =====

type mockAssignments mockRepository

func (m *mockAssignments) Create(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.PersonID == assignment.PersonID && existing.TestID == assignment.TestID {
			return fmt.Errorf("duplicate assignment for person %s test %d", assignment.PersonID, assignment.TestID)
		}
	}
	assignment.ID = m.nextAssignmentID
	m.nextAssignmentID++
	copied := *assignment
	m.assignments[assignment.ID] = &copied
	return nil
}

func (m *mockAssignments) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAssignments) GetByPersonAndTest(ctx context.Context, personID string, testID uint) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.PersonID == personID && a.TestID == testID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAssignments) Update(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[assignment.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *assignment
	m.assignments[assignment.ID] = &copied
	return nil
}

func (m *mockAssignments) List(ctx context.Context, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Assignment
	for _, a := range m.assignments {
		if filters.PersonID != nil && a.PersonID != *filters.PersonID {
			continue
		}
		if filters.TestID != nil && a.TestID != *filters.TestID {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockAssignments) GetStats(ctx context.Context, personID *string) (*repositories.AssignmentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &repositories.AssignmentStats{}
	for _, a := range m.assignments {
		if personID != nil && a.PersonID != *personID {
			continue
		}
		stats.Total++
		switch a.Status {
		case models.AssignmentAssigned:
			stats.Assigned++
		case models.AssignmentStarted:
			stats.Started++
		case models.AssignmentCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// ===== SESSIONS =====

type mockSessions mockRepository

func (m *mockSessions) CreateOrGetActive(ctx context.Context, session *models.TestSession) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.PersonID == session.PersonID && existing.TestID == session.TestID &&
			existing.Status == models.SessionInProgress {
			*session = *existing
			return false, nil
		}
	}
	session.ID = m.nextSessionID
	m.nextSessionID++
	copied := *session
	m.sessions[session.ID] = &copied
	return true, nil
}

func (m *mockSessions) GetByID(ctx context.Context, id uint) (*models.TestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSessions) GetActive(ctx context.Context, personID string, testID uint) (*models.TestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.PersonID == personID && s.TestID == testID && s.Status == models.SessionInProgress {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockSessions) Update(ctx context.Context, session *models.TestSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockSessions) CountCompleted(ctx context.Context, personID string, testID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, s := range m.sessions {
		if s.PersonID == personID && s.TestID == testID && s.Status == models.SessionCompleted {
			count++
		}
	}
	return count, nil
}

func (m *mockSessions) GetByPerson(ctx context.Context, personID string) ([]*models.TestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TestSession
	for _, s := range m.sessions {
		if s.PersonID == personID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ===== RESULTS =====

type mockResults mockRepository

func (m *mockResults) CreateIdempotent(ctx context.Context, result *models.TestResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResultWrite {
		return false, fmt.Errorf("result store offline")
	}
	for _, existing := range m.results {
		if existing.SessionID == result.SessionID {
			*result = *existing
			return false, nil
		}
	}
	result.ID = m.nextResultID
	m.nextResultID++
	copied := *result
	m.results[result.ID] = &copied
	return true, nil
}

func (m *mockResults) GetByID(ctx context.Context, id uint) (*models.TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockResults) GetBySession(ctx context.Context, sessionID uint) (*models.TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.SessionID == sessionID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockResults) GetByPerson(ctx context.Context, personID string, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	filters.PersonID = &personID
	return m.List(ctx, filters)
}

func (m *mockResults) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TestResult
	for _, r := range m.results {
		if filters.PersonID != nil && r.PersonID != *filters.PersonID {
			continue
		}
		if filters.TestID != nil && r.TestID != *filters.TestID {
			continue
		}
		if filters.Passed != nil && r.Passed != *filters.Passed {
			continue
		}
		copied := *r
		if test, ok := m.tests[r.TestID]; ok {
			copied.Test = *test
		}
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockResults) UpdateAnalysis(ctx context.Context, resultID uint, analysis *models.SkillGapAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[resultID]
	if !ok {
		return repositories.ErrNotFound
	}
	r.SkillGapAnalysis = analysisColumn(analysis)
	return nil
}

// analysisColumn wraps an analysis the way the jsonb column stores it.
func analysisColumn(analysis *models.SkillGapAnalysis) *datatypes.JSONType[models.SkillGapAnalysis] {
	wrapped := datatypes.NewJSONType(*analysis)
	return &wrapped
}

// ===== CATALOG =====

type mockCatalog mockRepository

func (m *mockCatalog) GetTest(ctx context.Context, testID uint) (*models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCatalog {
		return nil, fmt.Errorf("catalog store offline")
	}
	t, ok := m.tests[testID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockCatalog) GetQuestions(ctx context.Context, testID uint) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCatalog {
		return nil, fmt.Errorf("catalog store offline")
	}
	return m.questions[testID], nil
}

func (m *mockCatalog) ListTests(ctx context.Context) ([]*models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCatalog {
		return nil, fmt.Errorf("catalog store offline")
	}
	var out []*models.Test
	for _, t := range m.tests {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

// ===== USERS =====

type mockUsers mockRepository

func (m *mockUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUsers) GetRole(ctx context.Context, id string) (models.UserRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return u.Role, nil
}

// ===== FIXTURE HELPERS =====

func (m *mockRepository) addUser(id string, role models.UserRole) {
	m.users[id] = &models.User{ID: id, FullName: "Test User " + id, Email: id + "@example.com", Role: role}
}

func (m *mockRepository) addTest(test *models.Test, questions ...*models.Question) {
	m.tests[test.ID] = test
	m.questions[test.ID] = questions
}

func (m *mockRepository) addAssignment(a *models.Assignment) *models.Assignment {
	a.ID = m.nextAssignmentID
	m.nextAssignmentID++
	m.assignments[a.ID] = a
	return a
}
