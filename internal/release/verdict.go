// Package release decides whether unreleased commits warrant a release, at
// what semver severity, and prepares the changelog that goes with it.
package release

import (
	"fmt"

	"github.com/groupon/nlm/internal/commits"
)

// Type is the semver severity of a release, ordered from none to major.
type Type int

const (
	None Type = iota
	Patch
	Minor
	Major
)

var typeNames = [...]string{"none", "patch", "minor", "major"}

func (t Type) String() string {
	if t < None || t > Major {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType converts "none", "patch", "minor" or "major" into a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("unknown release type %q", s)
}

// MarshalText encodes the type by name, for JSON and YAML output.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// impact is the effect a single commit type has on the release type.
// ok is false when the type cannot be classified. build and ci have emoji
// and changelog entries but no release impact, so they are invalid here.
func impact(t commits.Type) (level Type, ok bool) {
	switch t {
	case commits.TypeFix, commits.TypeRefactor, commits.TypePerf,
		commits.TypeRevert, commits.TypeChore:
		return Patch, true
	case commits.TypeFeat:
		return Minor, true
	case commits.TypeDocs, commits.TypeStyle, commits.TypeTest, commits.TypePR:
		return None, true
	}
	return None, false
}

// DetermineReleaseInfo folds the commits into a release type. A breaking
// change note makes the release major. Commits whose type is missing or
// unknown are invalid: they fail the verdict with an *InvalidCommitsError
// unless acceptInvalid is set, in which case the release is major.
func DetermineReleaseInfo(all []commits.Commit, acceptInvalid bool) (Type, error) {
	level := None
	var invalid []commits.Commit

	for _, c := range all {
		if c.IsBreaking() {
			level = Major
			continue
		}

		l, ok := impact(c.Type)
		if !ok {
			invalid = append(invalid, c)
			continue
		}
		level = max(level, l)
	}

	if len(invalid) > 0 {
		if !acceptInvalid {
			return None, NewInvalidCommitsError(invalid)
		}
		level = Major
	}

	return level, nil
}
