package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ketan-bobby/skillpulse/internal/cache"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

type CatalogPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewCatalogPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.CatalogRepository {
	return &CatalogPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *CatalogPostgreSQL) GetTest(ctx context.Context, testID uint) (*models.Test, error) {
	var test models.Test
	err := r.cacheManager.Catalog.CacheOrExecute(ctx, fmt.Sprintf("test:%d", testID), &test, cache.CatalogConfig.TTL, func() (interface{}, error) {
		var row models.Test
		if err := r.db.WithContext(ctx).First(&row, testID).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *CatalogPostgreSQL) GetQuestions(ctx context.Context, testID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := r.cacheManager.Catalog.CacheOrExecute(ctx, fmt.Sprintf("questions:%d", testID), &questions, cache.CatalogConfig.TTL, func() (interface{}, error) {
		var rows []*models.Question
		err := r.db.WithContext(ctx).
			Where("test_id = ?", testID).
			Order("question_order asc, id asc").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *CatalogPostgreSQL) ListTests(ctx context.Context) ([]*models.Test, error) {
	var tests []*models.Test
	err := r.cacheManager.Catalog.CacheOrExecute(ctx, "tests:all", &tests, cache.CatalogConfig.TTL, func() (interface{}, error) {
		var rows []*models.Test
		if err := r.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return tests, nil
}
