package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"

	"github.com/salonpulse-ai/salonpulse-backend/internal/intelligence"
	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/config"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/logger"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/metrics"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "aggregate-reports"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "aggregate-reports",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"reports": cfg.Reports.Dir,
		"dataset": cfg.Reports.DatasetPath,
	})

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.NewRegistry())
	ingestor := reports.NewIngestor(logg, pipelineMetrics)

	files, err := ingestor.ListReportFiles(cfg.Reports.Dir)
	requireResource(ctx, logg, "reports directory", err)
	if len(files) == 0 {
		logg.Warn(ctx, "no report files found, writing an empty dataset")
	}

	result := ingestReports(ctx, ingestor, files)
	if result.Warnings != nil {
		for _, warn := range multierr.Errors(result.Warnings) {
			logg.Warn(ctx, "ingest warning: "+warn.Error())
		}
	}

	rows := result.Rows
	if cfg.Reports.Country != "" {
		rows = reports.FilterByCountry(rows, cfg.Reports.Country)
		ctx = logg.WithField(ctx, "country", cfg.Reports.Country)
	}

	dataset := intelligence.NewAggregator().Build(rows)
	err = intelligence.WriteDataset(cfg.Reports.DatasetPath, dataset)
	requireResource(ctx, logg, "dataset writer", err)

	logRunSummary(ctx, logg, pipelineMetrics, result)
	logg.Info(logg.WithFields(ctx, map[string]any{
		"rows":   len(rows),
		"months": dataset.Summary.MonthsCovered,
		"salons": dataset.Summary.TotalSalons,
	}), "market-intelligence dataset written")
}

// ingestReports walks the file list one by one so the progress bar advances
// per file, merging each result into one batch outcome.
func ingestReports(ctx context.Context, ingestor *reports.Ingestor, files []string) *reports.IngestResult {
	bar := progressbar.Default(int64(len(files)), "ingesting reports")
	merged := &reports.IngestResult{}
	for _, file := range files {
		res := ingestor.IngestFiles(ctx, []string{file})
		merged.Rows = append(merged.Rows, res.Rows...)
		merged.Files = append(merged.Files, res.Files...)
		merged.SkippedFiles = append(merged.SkippedFiles, res.SkippedFiles...)
		merged.Warnings = multierr.Append(merged.Warnings, res.Warnings)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return merged
}

func logRunSummary(ctx context.Context, logg *logger.Logger, m *metrics.PipelineMetrics, result *reports.IngestResult) {
	fields := map[string]any{
		"files_skipped": len(result.SkippedFiles),
	}
	for name, value := range m.Snapshot() {
		fields[name] = value
	}
	logg.Info(logg.WithFields(ctx, fields), "ingest run summary")

	for _, fc := range m.CoercedByFile() {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"file":          fc.File,
			"coerced_cells": fc.Count,
		}), "cells coerced to zero during normalization")
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
