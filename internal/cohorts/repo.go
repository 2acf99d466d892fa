package cohorts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonpulse-ai/salonpulse-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cohorts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// DeleteAll wipes every cohort; members go with them via cascade delete.
func (r *repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Cohort{}).Error
}

func (r *repository) CreateCohort(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error) {
	if cohort.ID == uuid.Nil {
		cohort.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(cohort).Error; err != nil {
		return nil, err
	}
	return cohort, nil
}

func (r *repository) CreateMembers(ctx context.Context, members []models.CohortMember) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&members).Error
}

func (r *repository) CountCohorts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Cohort{}).Count(&count).Error
	return count, err
}

func (r *repository) FindCohortByName(ctx context.Context, name string) (*models.Cohort, error) {
	var cohort models.Cohort
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("name = ?", name).
		First(&cohort).Error
	if err != nil {
		return nil, err
	}
	return &cohort, nil
}
