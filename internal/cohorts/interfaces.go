package cohorts

import (
	"context"

	"gorm.io/gorm"

	"github.com/salonpulse-ai/salonpulse-backend/pkg/db/models"
)

// Repository defines persistence operations for the cohort tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DeleteAll(ctx context.Context) error
	CreateCohort(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error)
	CreateMembers(ctx context.Context, members []models.CohortMember) error
	CountCohorts(ctx context.Context) (int64, error)
	FindCohortByName(ctx context.Context, name string) (*models.Cohort, error)
}

// TxRunner executes a function inside one database transaction. The rebuild
// depends on it so wipe and recreate commit or roll back together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
