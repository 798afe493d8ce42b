package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ketan-bobby/skillpulse/internal/cache"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

type SessionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewSessionPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db, cacheManager: cacheManager}
}

// CreateOrGetActive relies on the partial unique index
// idx_sessions_one_active on (person_id, test_id) WHERE status =
// 'in_progress' (created by pkg.InitDatabase). The insert uses ON CONFLICT
// DO NOTHING; RowsAffected = 0 means a concurrent start won, so the
// existing active row is fetched. No read-then-write window exists.
func (r *SessionPostgreSQL) CreateOrGetActive(ctx context.Context, session *models.TestSession) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(session)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create session: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.GetActive(ctx, session.PersonID, session.TestID)
	if err != nil {
		return false, fmt.Errorf("conflict on active session but fetch failed: %w", err)
	}
	*session = *existing
	return false, nil
}

func (r *SessionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TestSession, error) {
	var session models.TestSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) GetActive(ctx context.Context, personID string, testID uint) (*models.TestSession, error) {
	var session models.TestSession
	err := r.db.WithContext(ctx).
		Where("person_id = ? AND test_id = ? AND status = ?", personID, testID, models.SessionInProgress).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) Update(ctx context.Context, session *models.TestSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return err
	}
	// stale cached views are worse than a miss
	if err := r.cacheManager.Session.Delete(ctx, fmt.Sprintf("id:%d", session.ID)); err != nil {
		return nil // cache degradation is not a write failure
	}
	return nil
}

func (r *SessionPostgreSQL) CountCompleted(ctx context.Context, personID string, testID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("person_id = ? AND test_id = ? AND status = ?", personID, testID, models.SessionCompleted).
		Count(&count).Error
	return count, err
}

func (r *SessionPostgreSQL) GetByPerson(ctx context.Context, personID string) ([]*models.TestSession, error) {
	var sessions []*models.TestSession
	err := r.db.WithContext(ctx).
		Where("person_id = ?", personID).
		Order("started_at desc").
		Find(&sessions).Error
	return sessions, err
}
