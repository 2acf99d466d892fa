package cohorts

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/salonpulse-ai/salonpulse-backend/pkg/errors"
	"github.com/salonpulse-ai/salonpulse-backend/pkg/months"
)

// Window is one named eligibility window a rebuild turns into a cohort.
type Window struct {
	Name        string
	Description string
	Start       months.Month
	End         months.Month
}

// DefaultWindows are the windows a rebuild uses when no windows file is
// configured. Names double as the cohort names, so they must stay unique.
func DefaultWindows() []Window {
	return []Window{
		{
			Name:        "loyalty-2023",
			Description: "Salons continuously active through calendar 2023",
			Start:       months.New(2023, time.January),
			End:         months.New(2023, time.December),
		},
		{
			Name:        "loyalty-jan23-jan24",
			Description: "Salons continuously active Jan 2023 through Jan 2024",
			Start:       months.New(2023, time.January),
			End:         months.New(2024, time.January),
		},
		{
			Name:        "loyalty-2024-h1",
			Description: "Salons continuously active in the first half of 2024",
			Start:       months.New(2024, time.January),
			End:         months.New(2024, time.June),
		},
	}
}

type windowSpec struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Start       string `json:"start" validate:"required"`
	End         string `json:"end" validate:"required"`
}

type windowsFile struct {
	Windows []windowSpec `json:"windows" validate:"required,min=1,dive"`
}

// LoadWindows resolves the rebuild windows. An empty path returns the
// defaults; otherwise the JSON file at path fully replaces them. The file is
// validated before any month parsing so operators get field-level messages.
func LoadWindows(path string) ([]Window, error) {
	if path == "" {
		return DefaultWindows(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading windows file")
	}

	var file windowsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing windows file")
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid windows file")
	}

	seen := make(map[string]struct{}, len(file.Windows))
	windows := make([]Window, 0, len(file.Windows))
	for i, spec := range file.Windows {
		if _, dup := seen[spec.Name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate window name %q", spec.Name))
		}
		seen[spec.Name] = struct{}{}

		start, err := months.Parse(spec.Start)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
				fmt.Sprintf("window %d start", i))
		}
		end, err := months.Parse(spec.End)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
				fmt.Sprintf("window %d end", i))
		}
		if end.Before(start) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("window %q ends before it starts", spec.Name))
		}

		windows = append(windows, Window{
			Name:        spec.Name,
			Description: spec.Description,
			Start:       start,
			End:         end,
		})
	}
	return windows, nil
}
