package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// CheckCompatibility reports whether a results file written by
// fileVersion can be read by an engine at engineVersion.
//
// Compatibility rules:
//   - "main" on either side is a development build and skips the check
//   - major versions must match exactly
//   - minor versions must match exactly
//   - patch versions can differ (1.2.0 reads 1.2.5 output)
func CheckCompatibility(engineVersion, fileVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	fileVersion = strings.TrimPrefix(fileVersion, "v")

	if engineVersion == "main" || fileVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version %q", engineVersion)
	}

	fileSemver, err := semver.NewVersion(fileVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid results file version %q", fileVersion)
	}

	if engineSemver.Major() != fileSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: engine is %d.x.x but results were written by %d.x.x",
			engineSemver.Major(), fileSemver.Major())
	}

	if engineSemver.Minor() != fileSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: engine is %d.%d.x but results were written by %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			fileSemver.Major(), fileSemver.Minor())
	}

	return nil
}
