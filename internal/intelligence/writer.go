package intelligence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/salonpulse-ai/salonpulse-backend/pkg/errors"
)

// WriteDataset serializes the dataset and replaces the file at path
// atomically. Serialization is fully deterministic (sorted slices upstream,
// json map keys sorted by the encoder), so rerunning over unchanged input
// rewrites the file byte for byte.
func WriteDataset(path string, dataset *Dataset) error {
	if dataset == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "dataset is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating dataset directory")
	}

	payload, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serializing dataset")
	}
	payload = append(payload, '\n')

	// Write to a sibling temp file and rename so readers never observe a
	// partially written dataset.
	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s-*", filepath.Base(path)))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating temp dataset file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing dataset")
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "closing dataset file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replacing dataset file")
	}
	return nil
}
