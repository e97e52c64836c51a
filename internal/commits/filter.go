package commits

import "strings"

// Segment is one raw record of log output together with its commit hash.
type Segment struct {
	SHA  string
	Text string
}

// SplitLog splits raw log output on Separator, dropping blank records.
func SplitLog(raw string) []Segment {
	var segments []Segment
	for _, part := range strings.Split(raw, Separator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		meta, _, _ := strings.Cut(part, "\n")
		fields := strings.Fields(meta)
		if len(fields) == 0 {
			continue
		}
		segments = append(segments, Segment{SHA: fields[0], Text: part})
	}
	return segments
}

// noMarker is the version tag of a package that was never released.
const noMarker = "v0.0.0"

// FilterSince returns the segments following the one whose hash matches
// marker (full or abbreviated). An empty marker keeps every segment, and so
// does a marker that does not occur: the log was then already limited to the
// unreleased range by its source.
func FilterSince(segments []Segment, marker string) []Segment {
	if marker == "" || marker == noMarker {
		return segments
	}
	for i, s := range segments {
		if s.SHA == marker || (len(marker) >= 7 && strings.HasPrefix(s.SHA, marker)) {
			return segments[i+1:]
		}
	}
	return segments
}

// IsNoise reports whether a commit is an automatically generated merge with no
// classification of its own, such as "Merge branch 'main' into feature".
func IsNoise(c Commit) bool {
	return c.Type == TypeNone && strings.HasPrefix(c.Header, "Merge ")
}

// DropNoise returns the commits that are not merge noise.
func DropNoise(all []Commit) []Commit {
	kept := make([]Commit, 0, len(all))
	for _, c := range all {
		if !IsNoise(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// ParseLog parses raw log output into commits, keeping only records after
// marker and dropping merge noise. Empty output yields an empty list.
func ParseLog(raw, marker string) ([]Commit, error) {
	segments := FilterSince(SplitLog(raw), marker)

	parsed := make([]Commit, 0, len(segments))
	for _, s := range segments {
		c, err := ParseSegment(s.Text)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, c)
	}

	return DropNoise(parsed), nil
}
