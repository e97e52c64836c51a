package release

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// NextVersion returns the version to publish after current for a release of
// type t. Any release out of a 0.x version goes straight to 1.0.0.
func NextVersion(current string, t Type) (string, error) {
	if t == None {
		return "", ErrNoChanges
	}

	v, err := semver.NewVersion(current)
	if err != nil {
		return "", fmt.Errorf("parsing version %q: %w", current, err)
	}

	if v.Major() == 0 {
		return "1.0.0", nil
	}

	var next semver.Version
	switch t {
	case Patch:
		next = v.IncPatch()
	case Minor:
		next = v.IncMinor()
	case Major:
		next = v.IncMajor()
	default:
		return "", fmt.Errorf("unknown release type %s", t)
	}
	return next.String(), nil
}
