package cohorts

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salonpulse-ai/salonpulse-backend/internal/eligibility"
	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/db"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/db/models"
	pkgerrors "github.com/salonpulse-ai/salonpulse-backend/pkg/errors"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/logger"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/metrics"
)

// nearMissSampleSize caps how many near-miss salons are persisted and logged
// per cohort for operator review.
const nearMissSampleSize = 5

// Service rebuilds the persisted cohort set from usage rows.
type Service interface {
	Rebuild(ctx context.Context, rows []reports.UsageRow, windows []Window) (*RebuildResult, error)
}

// RebuildResult summarizes one rebuild for logging and exit-code decisions.
type RebuildResult struct {
	Cohorts      int
	TotalMembers int
}

type service struct {
	repo      Repository
	tx        TxRunner
	logg      *logger.Logger
	metrics   *metrics.PipelineMetrics
	createdBy string
}

// NewService wires the rebuild orchestrator. metrics may be nil.
func NewService(repo Repository, tx TxRunner, logg *logger.Logger, m *metrics.PipelineMetrics, createdBy string) Service {
	return &service{
		repo:      repo,
		tx:        tx,
		logg:      logg,
		metrics:   m,
		createdBy: createdBy,
	}
}

// Rebuild wipes every cohort and recreates one per window from the
// eligibility engine's output, all inside a single transaction. A failure at
// any point rolls the whole rebuild back, so readers only ever see the
// previous complete set or the new one.
//
// Rebuild is safe to re-run but not to run concurrently against the same
// database; runners must be serialized operationally.
func (s *service) Rebuild(ctx context.Context, rows []reports.UsageRow, windows []Window) (*RebuildResult, error) {
	if len(windows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cohort windows configured")
	}

	// Eligibility is pure, so compute every window before touching the
	// database. A bad window fails the run without wiping anything.
	results := make([]*eligibility.Result, len(windows))
	for i, window := range windows {
		result, err := eligibility.Compute(rows, window.Start, window.End)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
				fmt.Sprintf("computing eligibility for window %q", window.Name))
		}
		results[i] = result
	}

	summary := &RebuildResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.DeleteAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "wiping cohorts")
		}

		for i, window := range windows {
			members, err := s.writeCohort(ctx, repo, window, results[i])
			if err != nil {
				return err
			}
			summary.Cohorts++
			summary.TotalMembers += members
		}

		count, err := repo.CountCohorts(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verifying cohort count")
		}
		if count != int64(len(windows)) {
			return pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("cohort count mismatch: persisted %d, expected %d", count, len(windows)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, window := range windows {
		s.logNearMisses(ctx, window, results[i])
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"cohorts": summary.Cohorts,
			"members": summary.TotalMembers,
		}), "cohort rebuild committed")
	}
	return summary, nil
}

func (s *service) writeCohort(ctx context.Context, repo Repository, window Window, result *eligibility.Result) (int, error) {
	cohort := &models.Cohort{
		Name:           window.Name,
		StartMonth:     window.Start.Key(),
		EndMonth:       window.End.Key(),
		CreatedBy:      s.createdBy,
		NearMissSample: nearMissSample(result),
	}
	if window.Description != "" {
		desc := window.Description
		cohort.Description = &desc
	}

	created, err := repo.CreateCohort(ctx, cohort)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			// Only possible if another rebuild is racing this one; the
			// rebuild is not concurrency-safe and must be serialized.
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("cohort %q already exists, is another rebuild running?", window.Name))
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("creating cohort %q", window.Name))
	}

	members := make([]models.CohortMember, 0, len(result.Eligible))
	for _, userID := range result.Eligible {
		members = append(members, models.CohortMember{
			CohortID: created.ID,
			UserID:   userID,
		})
	}
	if err := repo.CreateMembers(ctx, members); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("creating members for cohort %q", window.Name))
	}

	s.metrics.IncCohortsWritten()
	s.metrics.AddMembersWritten(len(members))
	return len(members), nil
}

// nearMissSample takes the first salons (already sorted) that fell just
// short of the threshold.
func nearMissSample(result *eligibility.Result) []string {
	sample := result.NearMisses
	if len(sample) > nearMissSampleSize {
		sample = sample[:nearMissSampleSize]
	}
	out := make([]string, len(sample))
	copy(out, sample)
	return out
}

func (s *service) logNearMisses(ctx context.Context, window Window, result *eligibility.Result) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithCohort(ctx, window.Name)
	for _, userID := range nearMissSample(result) {
		stats := result.Details[userID]
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"salon_id":        userID,
			"active_months":   stats.ActiveMonths,
			"max_consecutive": stats.MaxConsecutive,
			"threshold":       result.Threshold,
		}), "near miss: salon fell short of the consecutive-month threshold")
	}
}
