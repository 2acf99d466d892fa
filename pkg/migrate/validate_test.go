package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestValidateDirRejectsMissingDownSection(t *testing.T) {
	dir := t.TempDir()
	bad := "-- +goose Up\nCREATE TABLE t (id int);\n"
	if err := os.WriteFile(filepath.Join(dir, "00001_bad.sql"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected validation error for missing Down section")
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	ok := "-- +goose Up\n-- +goose Down\n"
	for _, name := range []string{"00001_a.sql", "00001_b.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(ok), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected validation error for duplicate versions")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "add cohort flags")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created migration: %v", err)
	}
	if string(raw) != sqlTemplate {
		t.Fatalf("unexpected template: %q", raw)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
}
