package postgres

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ketan-bobby/skillpulse/internal/cache"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

type ResultPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewResultPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db, cacheManager: cacheManager}
}

// CreateIdempotent relies on the unique index on session_id. The insert
// uses ON CONFLICT DO NOTHING; RowsAffected = 0 means a result for the
// session already exists, so that row is fetched and returned in place of
// the candidate.
func (r *ResultPostgreSQL) CreateIdempotent(ctx context.Context, result *models.TestResult) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("Test", "Session").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(result)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create result: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		r.cacheManager.InvalidateResult(ctx, result.ID, result.PersonID)
		return true, nil
	}

	existing, err := r.GetBySession(ctx, result.SessionID)
	if err != nil {
		return false, fmt.Errorf("conflict on session result but fetch failed: %w", err)
	}
	*result = *existing
	return false, nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TestResult, error) {
	var result models.TestResult
	err := r.cacheManager.Result.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &result, cache.ResultConfig.TTL, func() (interface{}, error) {
		var row models.TestResult
		if err := r.db.WithContext(ctx).Preload("Test").First(&row, id).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) GetBySession(ctx context.Context, sessionID uint) (*models.TestResult, error) {
	var result models.TestResult
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) GetByPerson(ctx context.Context, personID string, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	filters.PersonID = &personID
	return r.List(ctx, filters)
}

func (r *ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TestResult{})
	query = r.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var results []*models.TestResult
	if err := query.Preload("Test").Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}
	return results, total, nil
}

// UpdateAnalysis writes the analysis column only. Scoring columns are
// immutable once the result row exists.
func (r *ResultPostgreSQL) UpdateAnalysis(ctx context.Context, resultID uint, analysis *models.SkillGapAnalysis) error {
	payload := datatypes.NewJSONType(*analysis)
	res := r.db.WithContext(ctx).
		Model(&models.TestResult{}).
		Where("id = ?", resultID).
		Update("skill_gap_analysis", payload)
	if res.Error != nil {
		return fmt.Errorf("failed to update analysis: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	var row struct{ PersonID string }
	if err := r.db.WithContext(ctx).Model(&models.TestResult{}).Where("id = ?", resultID).Select("person_id").Scan(&row).Error; err == nil {
		r.cacheManager.InvalidateResult(ctx, resultID, row.PersonID)
	}
	return nil
}

func (r *ResultPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.PersonID != nil {
		query = query.Where("person_id = ?", *filters.PersonID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
