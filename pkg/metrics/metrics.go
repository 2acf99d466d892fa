package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records counters for one batch run: ingest volume,
// best-effort skips kept auditable for operators, and rebuild output.
type PipelineMetrics struct {
	registry *prometheus.Registry

	filesProcessed prometheus.Counter
	filesSkipped   prometheus.Counter
	rowsIngested   prometheus.Counter
	rowsSkipped    prometheus.Counter
	cellsCoerced   *prometheus.CounterVec
	cohortsWritten prometheus.Counter
	membersWritten prometheus.Counter
}

// NewPipelineMetrics registers the pipeline counters on a fresh registry.
// A nil receiver or registry turns every method into a no-op.
func NewPipelineMetrics(registry *prometheus.Registry) *PipelineMetrics {
	if registry == nil {
		return &PipelineMetrics{}
	}

	m := &PipelineMetrics{
		registry: registry,
		filesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "report_files_processed",
			Help: "Report files ingested successfully.",
		}),
		filesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "report_files_skipped",
			Help: "Report files skipped (no discoverable header row).",
		}),
		rowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usage_rows_ingested",
			Help: "Usage rows normalized into the pipeline.",
		}),
		rowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usage_rows_skipped",
			Help: "Malformed rows dropped during ingestion.",
		}),
		cellsCoerced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cells_coerced_to_zero",
			Help: "Numeric cells that failed coercion and degraded to zero.",
		}, []string{"file"}),
		cohortsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cohorts_written",
			Help: "Cohort rows persisted by the rebuild.",
		}),
		membersWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cohort_members_written",
			Help: "Cohort member rows persisted by the rebuild.",
		}),
	}
	registry.MustRegister(
		m.filesProcessed, m.filesSkipped,
		m.rowsIngested, m.rowsSkipped, m.cellsCoerced,
		m.cohortsWritten, m.membersWritten,
	)
	return m
}

// IncFilesProcessed counts one successfully ingested report file.
func (m *PipelineMetrics) IncFilesProcessed() {
	if m == nil || m.filesProcessed == nil {
		return
	}
	m.filesProcessed.Inc()
}

// IncFilesSkipped counts one skipped report file.
func (m *PipelineMetrics) IncFilesSkipped() {
	if m == nil || m.filesSkipped == nil {
		return
	}
	m.filesSkipped.Inc()
}

// AddRowsIngested counts normalized usage rows.
func (m *PipelineMetrics) AddRowsIngested(n int) {
	if m == nil || m.rowsIngested == nil || n <= 0 {
		return
	}
	m.rowsIngested.Add(float64(n))
}

// AddRowsSkipped counts dropped rows.
func (m *PipelineMetrics) AddRowsSkipped(n int) {
	if m == nil || m.rowsSkipped == nil || n <= 0 {
		return
	}
	m.rowsSkipped.Add(float64(n))
}

// AddCellsCoerced counts cells that degraded to zero in the named file.
func (m *PipelineMetrics) AddCellsCoerced(file string, n int) {
	if m == nil || m.cellsCoerced == nil || n <= 0 {
		return
	}
	m.cellsCoerced.WithLabelValues(normalizeLabel(file)).Add(float64(n))
}

// IncCohortsWritten counts one persisted cohort.
func (m *PipelineMetrics) IncCohortsWritten() {
	if m == nil || m.cohortsWritten == nil {
		return
	}
	m.cohortsWritten.Inc()
}

// AddMembersWritten counts persisted cohort members.
func (m *PipelineMetrics) AddMembersWritten(n int) {
	if m == nil || m.membersWritten == nil || n <= 0 {
		return
	}
	m.membersWritten.Add(float64(n))
}

// Snapshot gathers every counter into a flat name->total map for the
// end-of-run summary log. Labeled counters are summed across labels.
func (m *PipelineMetrics) Snapshot() map[string]float64 {
	if m == nil || m.registry == nil {
		return nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return nil
	}

	out := make(map[string]float64, len(families))
	for _, family := range families {
		total := 0.0
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				total += counter.GetValue()
			}
		}
		out[family.GetName()] = total
	}
	return out
}

// CoercedByFile returns per-file coercion totals, sorted by file name, for
// the audit log.
func (m *PipelineMetrics) CoercedByFile() []FileCount {
	if m == nil || m.registry == nil {
		return nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return nil
	}

	var out []FileCount
	for _, family := range families {
		if family.GetName() != "cells_coerced_to_zero" {
			continue
		}
		for _, metric := range family.GetMetric() {
			fc := FileCount{Count: metric.GetCounter().GetValue()}
			for _, label := range metric.GetLabel() {
				if label.GetName() == "file" {
					fc.File = label.GetValue()
				}
			}
			out = append(out, fc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// FileCount pairs a report file with its coerced-cell total.
type FileCount struct {
	File  string
	Count float64
}

func normalizeLabel(file string) string {
	if file == "" {
		return "unknown"
	}
	return file
}
