package release

import (
	"context"
	"fmt"
	"slices"

	"github.com/groupon/nlm/internal/changelog"
	"github.com/groupon/nlm/internal/commits"
	"github.com/groupon/nlm/internal/hosting"
	"github.com/groupon/nlm/internal/manifest"
	"github.com/groupon/nlm/internal/refs"
	"github.com/groupon/nlm/internal/repository"
)

// LogSource supplies raw log output in the commits.LogFormat format for the
// commits made after fromRevision.
type LogSource interface {
	Log(ctx context.Context, fromRevision string) (string, error)
}

// Options controls release preparation.
type Options struct {
	// AcceptInvalidCommits turns unparseable history into a major release
	// instead of an error.
	AcceptInvalidCommits bool
	// PullRequest is the id of the pull request being built, if any.
	PullRequest string
	// From overrides the revision after which commits are unreleased. Empty
	// means the tag of the manifest version.
	From      string
	Changelog changelog.Options
}

// Result is the outcome of preparing a release.
type Result struct {
	ReleaseType    Type             `json:"releaseType" yaml:"releaseType"`
	CurrentVersion string           `json:"currentVersion" yaml:"currentVersion"`
	NextVersion    string           `json:"nextVersion,omitempty" yaml:"nextVersion,omitempty"`
	PullRequest    string           `json:"pullRequest,omitempty" yaml:"pullRequest,omitempty"`
	Repository     *repository.Info `json:"repository" yaml:"repository"`
	Commits        []commits.Commit `json:"commits" yaml:"commits"`
	Changelog      string           `json:"changelog,omitempty" yaml:"changelog,omitempty"`
}

// Publishable reports whether the result describes a release that may be
// published: something changed and the build is not for a pull request.
func (r *Result) Publishable() bool {
	return r.ReleaseType != None && r.PullRequest == ""
}

// Verify computes the release type of the unreleased commits and the version
// it leads to, without rendering a changelog. Nothing is looked up on the
// hosting service.
func Verify(all []commits.Commit, m *manifest.Manifest, opts Options) (*Result, error) {
	info, err := repository.Parse(m.Repository)
	if err != nil {
		return nil, err
	}

	releaseType, err := DetermineReleaseInfo(all, opts.AcceptInvalidCommits)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ReleaseType:    releaseType,
		CurrentVersion: m.Version,
		PullRequest:    opts.PullRequest,
		Repository:     info,
		Commits:        cloneCommits(all),
	}

	if releaseType != None {
		next, err := NextVersion(versionOrZero(m.Version), releaseType)
		if err != nil {
			return nil, err
		}
		result.NextVersion = next
	}

	refs.NormalizeAll(info, result.Commits)
	return result, nil
}

// Prepare computes the release type of the unreleased commits and renders
// their changelog. The release type depends on the commits alone and is
// decided before any pull request is looked up. pulls may be nil to skip
// pull request grouping.
func Prepare(ctx context.Context, all []commits.Commit, m *manifest.Manifest, pulls hosting.PullRequests, opts Options) (*Result, error) {
	result, err := Verify(all, m, opts)
	if err != nil {
		return nil, err
	}

	result.Changelog, err = changelog.Generate(ctx, result.Repository, result.Commits, pulls, opts.Changelog)
	if err != nil {
		return nil, fmt.Errorf("generating changelog: %w", err)
	}

	return result, nil
}

// VerifyFromLog reads the commits made since the manifest's version (or
// opts.From) from source and verifies them.
func VerifyFromLog(ctx context.Context, source LogSource, m *manifest.Manifest, opts Options) (*Result, error) {
	all, err := readLog(ctx, source, m, opts)
	if err != nil {
		return nil, err
	}
	return Verify(all, m, opts)
}

// PrepareFromLog reads the commits made since the manifest's version (or
// opts.From) from source and prepares the release.
func PrepareFromLog(ctx context.Context, source LogSource, m *manifest.Manifest, pulls hosting.PullRequests, opts Options) (*Result, error) {
	all, err := readLog(ctx, source, m, opts)
	if err != nil {
		return nil, err
	}
	return Prepare(ctx, all, m, pulls, opts)
}

func readLog(ctx context.Context, source LogSource, m *manifest.Manifest, opts Options) ([]commits.Commit, error) {
	marker := opts.From
	if marker == "" {
		marker = m.ReleaseMarker()
	}

	raw, err := source.Log(ctx, marker)
	if err != nil {
		return nil, fmt.Errorf("reading commits since %s: %w", marker, err)
	}

	all, err := commits.ParseLog(raw, marker)
	if err != nil {
		return nil, fmt.Errorf("parsing commits: %w", err)
	}
	return all, nil
}

func versionOrZero(v string) string {
	if v == "" {
		return "0.0.0"
	}
	return v
}

// cloneCommits copies the commits deeply enough that normalizing references
// does not modify the caller's slice.
func cloneCommits(all []commits.Commit) []commits.Commit {
	out := make([]commits.Commit, len(all))
	for i, c := range all {
		c.References = slices.Clone(c.References)
		out[i] = c
	}
	return out
}
