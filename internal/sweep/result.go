package sweep

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/mark-trading/internal/version"
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// SummaryFileName is the conventional file name for a sweep summary.
const SummaryFileName = "sweep.yaml"

// WriteSummary marshals the summary document to path as YAML.
func WriteSummary(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to marshal sweep summary", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to write sweep summary %s", path)
	}
	return nil
}

// ReadSummary loads a summary previously written by WriteSummary. The
// engine version recorded in it must be compatible with this build.
func ReadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read sweep summary %s", path)
	}

	var summary Summary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return Summary{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to parse sweep summary %s", path)
	}

	if err := version.CheckCompatibility(version.GetVersion(), summary.EngineVersion); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
