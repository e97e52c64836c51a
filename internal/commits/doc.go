// Package commits turns raw version-control log output into structured commit
// records.
//
// This package implements:
//   - splitting `git log --format='%H %P%n%B---nlm-split---'` output into segments
//   - a conventional-commit header grammar (`type(scope): subject`)
//   - breaking-change note and issue reference extraction from message bodies
//   - revert and pull request merge detection
//   - dropping of segments before the last release and of merge noise
//
// References are extracted raw; resolving them into links is done by package refs.
package commits
