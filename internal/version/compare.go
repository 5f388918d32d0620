package version

import (
	"strings"

	"github.com/GRTran/backtester/pkg/errors"
	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks that the running engine satisfies the version
// a config was written for. Returns nil if compatible.
//
// required is either a plain version or a semver constraint:
//   - "main" on either side skips the check (development build)
//   - a plain version must match the engine's major and minor version; patch may differ
//   - a constraint such as "^1.2", "~1.2.0" or ">=1.0, <2.0" must be satisfied by the engine
//
// Examples:
//   - Engine 1.2.1, required 1.2.0 -> OK
//   - Engine 1.3.0, required 1.2.0 -> ERROR (minor differs)
//   - Engine 1.3.0, required ^1.2 -> OK
//   - Engine 2.0.0, required ^1.2 -> ERROR
func CheckVersionCompatibility(engineVersion, required string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	required = strings.TrimSpace(required)

	if engineVersion == "main" || strings.TrimPrefix(required, "v") == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	if isConstraint(required) {
		constraint, err := semver.NewConstraint(required)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid version constraint '%s'", required)
		}

		if !constraint.Check(engineSemver) {
			return errors.Newf(errors.ErrCodeVersionMismatch,
				"engine version %s does not satisfy constraint '%s'", engineSemver, required)
		}

		return nil
	}

	requiredSemver, err := semver.NewVersion(strings.TrimPrefix(required, "v"))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid required version '%s'", required)
	}

	if engineSemver.Major() != requiredSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: engine is %d.x.x but config requires %d.x.x",
			engineSemver.Major(), requiredSemver.Major())
	}

	if engineSemver.Minor() != requiredSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: engine is %d.%d.x but config requires %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			requiredSemver.Major(), requiredSemver.Minor())
	}

	return nil
}

func isConstraint(v string) bool {
	return strings.ContainsAny(v, "^~<>=,|*xX ")
}
