package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (r *AssignmentPostgreSQL) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *AssignmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Preload("Test").First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentPostgreSQL) GetByPersonAndTest(ctx context.Context, personID string, testID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Where("person_id = ? AND test_id = ?", personID, testID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentPostgreSQL) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *AssignmentPostgreSQL) List(ctx context.Context, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	var assignments []*models.Assignment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Assignment{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Test").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (r *AssignmentPostgreSQL) GetStats(ctx context.Context, personID *string) (*repositories.AssignmentStats, error) {
	stats := &repositories.AssignmentStats{}

	base := r.db.WithContext(ctx).Model(&models.Assignment{})
	if personID != nil {
		base = base.Where("person_id = ?", *personID)
	}

	type row struct {
		Status models.AssignmentStatus
		N      int
	}
	var rows []row
	if err := base.Select("status, count(*) as n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		stats.Total += r.N
		switch r.Status {
		case models.AssignmentAssigned:
			stats.Assigned = r.N
		case models.AssignmentStarted:
			stats.Started = r.N
		case models.AssignmentCompleted:
			stats.Completed = r.N
		}
	}

	overdue := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", models.AssignmentCompleted, time.Now())
	if personID != nil {
		overdue = overdue.Where("person_id = ?", *personID)
	}
	var n int64
	if err := overdue.Count(&n).Error; err != nil {
		return nil, err
	}
	stats.Overdue = int(n)

	return stats, nil
}

func (r *AssignmentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AssignmentFilters) *gorm.DB {
	if filters.PersonID != nil {
		query = query.Where("person_id = ?", *filters.PersonID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DueBefore != nil {
		query = query.Where("due_date < ?", *filters.DueBefore)
	}
	return query
}
