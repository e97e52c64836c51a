// Package changelog turns a classified commit list into the markdown
// changelog of a release.
//
// This package implements:
//   - pull request grouping backed by a hosting.PullRequests lookup
//   - category classification, including the dependency-bump heuristic
//   - breaking change extraction from commit notes
//   - markdown rendering in the "categories" and "flat" layouts
//
// Rendering is deterministic: the same commits, pull requests and options
// always produce the same document.
package changelog
