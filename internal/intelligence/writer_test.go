package intelligence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
)

func TestWriteDatasetIdempotent(t *testing.T) {
	rows := []reports.UsageRow{
		usageRow("salon-1", "january", 2024, "Wella", 10, 500),
		usageRow("salon-2", "february", 2024, "Schwarzkopf", 4, 200),
	}
	path := filepath.Join(t.TempDir(), "nested", "market-intelligence.json")

	if err := WriteDataset(path, NewAggregator().Build(rows)); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := WriteDataset(path, NewAggregator().Build(rows)); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Fatal("rerun over unchanged input must rewrite byte-identical output")
	}
	if !strings.HasSuffix(string(first), "}\n") {
		t.Fatal("dataset file should end with a trailing newline")
	}
	if !strings.Contains(string(first), "\"monthlyTrends\"") {
		t.Fatal("serialized dataset missing expected keys")
	}
}

func TestWriteDatasetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market-intelligence.json")

	if err := WriteDataset(path, NewAggregator().Build(nil)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "market-intelligence.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}

func TestWriteDatasetNilDataset(t *testing.T) {
	if err := WriteDataset(filepath.Join(t.TempDir(), "out.json"), nil); err == nil {
		t.Fatal("expected error for nil dataset")
	}
}
