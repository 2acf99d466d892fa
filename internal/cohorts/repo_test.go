package cohorts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/salonpulse-ai/salonpulse-backend/pkg/db/models"
)

func setupCohortsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	cohorts := `
CREATE TABLE IF NOT EXISTS cohorts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  start_month TEXT NOT NULL,
  end_month TEXT NOT NULL,
  created_by TEXT NOT NULL,
  near_miss_sample TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	members := `
CREATE TABLE IF NOT EXISTS cohort_members (
  cohort_id TEXT NOT NULL REFERENCES cohorts(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  added_at DATETIME,
  PRIMARY KEY (cohort_id, user_id)
);`
	require.NoError(t, db.Exec(cohorts).Error)
	require.NoError(t, db.Exec(members).Error)

	return db
}

func TestRepositoryCreateAndFindCohort(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	desc := "continuously active salons"
	created, err := repo.CreateCohort(ctx, &models.Cohort{
		Name:           "loyalty-2023",
		Description:    &desc,
		StartMonth:     "Jan 2023",
		EndMonth:       "Dec 2023",
		CreatedBy:      "pipeline",
		NearMissSample: []string{"salon-9"},
	})
	require.NoError(t, err)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", created.ID.String())

	require.NoError(t, repo.CreateMembers(ctx, []models.CohortMember{
		{CohortID: created.ID, UserID: "salon-1"},
		{CohortID: created.ID, UserID: "salon-2"},
	}))

	found, err := repo.FindCohortByName(ctx, "loyalty-2023")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Jan 2023", found.StartMonth)
	assert.Len(t, found.Members, 2)
	assert.Equal(t, []string{"salon-9"}, []string(found.NearMissSample))
}

func TestRepositoryDeleteAllCascades(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cohort, err := repo.CreateCohort(ctx, &models.Cohort{
		Name:       "loyalty-2023",
		StartMonth: "Jan 2023",
		EndMonth:   "Dec 2023",
		CreatedBy:  "pipeline",
	})
	require.NoError(t, err)
	require.NoError(t, repo.CreateMembers(ctx, []models.CohortMember{
		{CohortID: cohort.ID, UserID: "salon-1"},
	}))

	require.NoError(t, repo.DeleteAll(ctx))

	count, err := repo.CountCohorts(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	var memberCount int64
	require.NoError(t, db.Model(&models.CohortMember{}).Count(&memberCount).Error)
	assert.Zero(t, memberCount, "members should cascade away with their cohort")
}

func TestRepositoryCreateMembersEmptySliceIsNoop(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateMembers(context.Background(), nil))
}

func TestRepositoryDuplicateCohortNameRejected(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.CreateCohort(ctx, &models.Cohort{
		Name: "loyalty-2023", StartMonth: "Jan 2023", EndMonth: "Dec 2023", CreatedBy: "pipeline",
	})
	require.NoError(t, err)

	_, err = repo.CreateCohort(ctx, &models.Cohort{
		Name: "loyalty-2023", StartMonth: "Feb 2023", EndMonth: "Dec 2023", CreatedBy: "pipeline",
	})
	assert.Error(t, err)
}
