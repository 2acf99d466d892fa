package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	pkgerrors "github.com/salonpulse-ai/salonpulse-backend/pkg/errors"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/logger"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/metrics"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

// FileStats is the per-file audit trail required by the best-effort policy:
// a file can degrade silently in content, but never in accounting.
type FileStats struct {
	File         string
	DataRows     int
	SkippedRows  int
	CoercedCells int
}

// IngestResult is the outcome of one directory pass.
type IngestResult struct {
	Rows         []UsageRow
	Files        []FileStats
	SkippedFiles []string

	// Warnings aggregates every non-fatal per-file problem. It never stops
	// the run; callers log it.
	Warnings error
}

// Ingestor walks a directory of monthly report exports and produces the flat
// UsageRow slice the aggregator and eligibility engine consume. Ingestion is
// best-effort per file: a file without a resolvable header is skipped with a
// warning, never fatal for the batch.
type Ingestor struct {
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
}

// NewIngestor wires the ingestor's logging and counters. Both may be nil.
func NewIngestor(logg *logger.Logger, m *metrics.PipelineMetrics) *Ingestor {
	return &Ingestor{logg: logg, metrics: m}
}

// ListReportFiles returns the CSV report files under dir, sorted by name so
// ingestion order (and therefore warning order) is deterministic.
func (i *Ingestor) ListReportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("reading reports dir %s", dir))
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// IngestDir ingests every report file under dir. The returned error is fatal
// (unreadable directory); per-file problems end up in IngestResult.Warnings.
func (i *Ingestor) IngestDir(ctx context.Context, dir string) (*IngestResult, error) {
	files, err := i.ListReportFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{}
	for _, file := range files {
		i.ingestInto(ctx, file, result)
	}
	return result, nil
}

// IngestFiles ingests an explicit file list (callers that drive their own
// progress reporting use this instead of IngestDir).
func (i *Ingestor) IngestFiles(ctx context.Context, files []string) *IngestResult {
	result := &IngestResult{}
	for _, file := range files {
		i.ingestInto(ctx, file, result)
	}
	return result
}

func (i *Ingestor) ingestInto(ctx context.Context, file string, result *IngestResult) {
	if i.logg != nil {
		ctx = i.logg.WithReportFile(ctx, filepath.Base(file))
	}

	rows, stats, err := i.IngestFile(ctx, file)
	if err != nil {
		result.SkippedFiles = append(result.SkippedFiles, filepath.Base(file))
		result.Warnings = multierr.Append(result.Warnings, fmt.Errorf("%s: %w", filepath.Base(file), err))
		i.metrics.IncFilesSkipped()
		if i.logg != nil {
			i.logg.Warn(ctx, "skipping report file: "+err.Error())
		}
		return
	}

	result.Rows = append(result.Rows, rows...)
	result.Files = append(result.Files, *stats)

	i.metrics.IncFilesProcessed()
	i.metrics.AddRowsIngested(stats.DataRows)
	i.metrics.AddRowsSkipped(stats.SkippedRows)
	i.metrics.AddCellsCoerced(stats.File, stats.CoercedCells)
}

// IngestFile parses a single report export: first content row is the title /
// date-range banner and is skipped, the second row is the header, the rest
// are data. The error return means the whole file was skipped.
func (i *Ingestor) IngestFile(ctx context.Context, path string) ([]UsageRow, *FileStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeIngest, err, "opening report file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// Title row.
	if _, err := reader.Read(); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeIngest, err, "report file has no content")
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeIngest, err, "report file has no header row")
	}

	sch, err := resolveSchema(header)
	if err != nil {
		return nil, nil, err
	}

	fallback := monthFromFilename(path)
	normalizer := NewNormalizer()
	stats := &FileStats{File: filepath.Base(path)}

	var rows []UsageRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.SkippedRows++
			continue
		}
		if isBlank(record) {
			continue
		}

		row := normalizer.Normalize(sch, record, fallback)
		if row.UserID == "" {
			stats.SkippedRows++
			continue
		}

		rows = append(rows, row)
		stats.DataRows++
	}
	stats.CoercedCells = normalizer.CoercedCells()

	if i.logg != nil {
		i.logg.Debug(ctx, fmt.Sprintf("ingested %d rows (%d skipped, %d coerced cells)",
			stats.DataRows, stats.SkippedRows, stats.CoercedCells))
	}
	return rows, stats, nil
}

// monthFromFilename recovers the reporting month from names like
// "usage-report-january-2024.csv". Rows missing Year/Month cells fall back
// to this value; a filename without one yields a zero fallback.
func monthFromFilename(path string) months.Month {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tokens := strings.FieldsFunc(strings.ToLower(base), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	var out months.Month
	for _, token := range tokens {
		if idx, ok := months.MonthIndex(token); ok {
			out.Index = idx
			continue
		}
		if len(token) == 4 {
			if year, err := strconv.Atoi(token); err == nil && year >= 1000 {
				out.Year = year
			}
		}
	}
	return out
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
