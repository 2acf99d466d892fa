package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/salonpulse-ai/salonpulse-backend/internal/cohorts"
	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/config"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/db"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/logger"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/metrics"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "cohort-rebuild"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "cohort-rebuild",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"country": cfg.Cohorts.Country,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	err = dbClient.Ping(ctx)
	requireResource(ctx, logg, "database ping", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	windows, err := cohorts.LoadWindows(cfg.Cohorts.WindowsFile)
	requireResource(ctx, logg, "cohort windows", err)

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.NewRegistry())
	ingestor := reports.NewIngestor(logg, pipelineMetrics)

	result, err := ingestor.IngestDir(ctx, cfg.Reports.Dir)
	requireResource(ctx, logg, "reports directory", err)
	if result.Warnings != nil {
		for _, warn := range multierr.Errors(result.Warnings) {
			logg.Warn(ctx, "ingest warning: "+warn.Error())
		}
	}

	rows := reports.FilterByCountry(result.Rows, cfg.Cohorts.Country)
	if len(rows) == 0 {
		logg.Warn(ctx, "no usage rows for configured country, cohorts will be empty")
	}

	svc := cohorts.NewService(
		cohorts.NewRepository(dbClient.DB()),
		dbClient,
		logg,
		pipelineMetrics,
		cfg.Cohorts.CreatedBy,
	)

	rebuild, err := svc.Rebuild(ctx, rows, windows)
	requireResource(ctx, logg, "cohort rebuild", err)

	fields := map[string]any{
		"cohorts": rebuild.Cohorts,
		"members": rebuild.TotalMembers,
	}
	for name, value := range pipelineMetrics.Snapshot() {
		fields[name] = value
	}
	logg.Info(logg.WithFields(ctx, fields), "cohort rebuild finished")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
