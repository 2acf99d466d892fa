package cohorts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/db/models"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// failingRepo wraps a real repository and fails cohort creation after the
// first success, to prove a mid-rebuild failure rolls everything back.
type failingRepo struct {
	Repository
	created int
}

func (f *failingRepo) WithTx(tx *gorm.DB) Repository {
	f.Repository = f.Repository.WithTx(tx)
	return f
}

func (f *failingRepo) CreateCohort(ctx context.Context, cohort *models.Cohort) (*models.Cohort, error) {
	f.created++
	if f.created > 1 {
		return nil, gorm.ErrInvalidData
	}
	return f.Repository.CreateCohort(ctx, cohort)
}

func activeRows(userID string, start months.Month, count int) []reports.UsageRow {
	rows := make([]reports.UsageRow, 0, count)
	cur := start
	for i := 0; i < count; i++ {
		rows = append(rows, reports.UsageRow{
			UserID:        userID,
			Year:          cur.Year,
			Month:         cur.Name(),
			Brand:         "Brand A",
			TotalServices: 5,
		})
		cur = cur.Next()
	}
	return rows
}

func testWindows() []Window {
	return []Window{
		{Name: "w-2023", Start: months.New(2023, time.January), End: months.New(2023, time.December)},
		{Name: "w-wide", Start: months.New(2023, time.January), End: months.New(2024, time.January)},
		{Name: "w-2024", Start: months.New(2024, time.January), End: months.New(2024, time.June)},
	}
}

func TestRebuildCardinality(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, gormTxRunner{db: db}, nil, nil, "pipeline")

	// salon-full covers every month of every window. salon-2023 runs Jan
	// through Nov 2023: 11 consecutive months passes the 12-month window
	// (threshold 11) but not the 13-month one (threshold 12).
	var rows []reports.UsageRow
	rows = append(rows, activeRows("salon-full", months.New(2023, time.January), 18)...)
	rows = append(rows, activeRows("salon-2023", months.New(2023, time.January), 11)...)

	windows := testWindows()
	result, err := svc.Rebuild(context.Background(), rows, windows)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Cohorts)

	count, err := repo.CountCohorts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, len(windows), count)

	w2023, err := repo.FindCohortByName(context.Background(), "w-2023")
	require.NoError(t, err)
	assert.Len(t, w2023.Members, 2)

	wWide, err := repo.FindCohortByName(context.Background(), "w-wide")
	require.NoError(t, err)
	require.Len(t, wWide.Members, 1)
	assert.Equal(t, "salon-full", wWide.Members[0].UserID)
}

func TestRebuildReplacesPreviousCohorts(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, gormTxRunner{db: db}, nil, nil, "pipeline")

	rows := activeRows("salon-full", months.New(2023, time.January), 18)
	windows := testWindows()

	_, err := svc.Rebuild(context.Background(), rows, windows)
	require.NoError(t, err)
	_, err = svc.Rebuild(context.Background(), rows, windows)
	require.NoError(t, err)

	count, err := repo.CountCohorts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, len(windows), count, "rerun must replace, not append")
}

func TestRebuildRollsBackOnFailure(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// Seed a cohort from a previous run; a failed rebuild must leave it.
	_, err := repo.CreateCohort(ctx, &models.Cohort{
		Name: "previous-run", StartMonth: "Jan 2023", EndMonth: "Dec 2023", CreatedBy: "pipeline",
	})
	require.NoError(t, err)

	broken := &failingRepo{Repository: NewRepository(db)}
	svc := NewService(broken, gormTxRunner{db: db}, nil, nil, "pipeline")

	rows := activeRows("salon-full", months.New(2023, time.January), 18)
	_, err = svc.Rebuild(ctx, rows, testWindows())
	require.Error(t, err)

	survivor, err := repo.FindCohortByName(ctx, "previous-run")
	require.NoError(t, err, "failed rebuild must roll back the wipe")
	assert.Equal(t, "previous-run", survivor.Name)

	count, err := repo.CountCohorts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRebuildPersistsNearMissSample(t *testing.T) {
	db := setupCohortsTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, gormTxRunner{db: db}, nil, nil, "pipeline")

	// 10-month window, threshold 9: an 8-month run is a near miss.
	window := Window{
		Name:  "w-near",
		Start: months.New(2023, time.January),
		End:   months.New(2023, time.October),
	}
	rows := activeRows("salon-close", window.Start, 8)

	_, err := svc.Rebuild(context.Background(), rows, []Window{window})
	require.NoError(t, err)

	cohort, err := repo.FindCohortByName(context.Background(), "w-near")
	require.NoError(t, err)
	assert.Empty(t, cohort.Members)
	assert.Equal(t, []string{"salon-close"}, []string(cohort.NearMissSample))
}

func TestRebuildRejectsEmptyWindowList(t *testing.T) {
	svc := NewService(NewRepository(setupCohortsTestDB(t)), gormTxRunner{}, nil, nil, "pipeline")
	_, err := svc.Rebuild(context.Background(), nil, nil)
	require.Error(t, err)
}
