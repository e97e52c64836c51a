package changelog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/groupon/nlm/internal/commits"
	"github.com/groupon/nlm/internal/hosting"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for changelog generation.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// GroupPullRequests builds a group for every pull request merge commit in
// all and returns the valid ones. Lookups run one at a time in log order.
// A pull request unknown to the hosting service yields an invalid group;
// any other lookup error aborts. A nil pulls skips all lookups, leaving
// every commit to be rendered on its own.
func GroupPullRequests(ctx context.Context, all []commits.Commit, pulls hosting.PullRequests) ([]PullRequest, error) {
	var groups []PullRequest
	for _, c := range all {
		if c.Type != commits.TypePR {
			continue
		}

		pr := PullRequest{PullID: c.PullID, Title: c.Header}
		if pulls != nil {
			if err := fetchPullRequest(ctx, pulls, all, &pr); err != nil {
				return nil, err
			}
		}
		groups = append(groups, pr)
	}

	return Prune(groups), nil
}

func fetchPullRequest(ctx context.Context, pulls hosting.PullRequests, all []commits.Commit, pr *PullRequest) error {
	info, infoErr := pulls.Get(ctx, pr.PullID)
	if infoErr != nil && !errors.Is(infoErr, hosting.ErrNotFound) {
		return fmt.Errorf("fetching pull request #%s: %w", pr.PullID, infoErr)
	}

	shas, shasErr := pulls.Commits(ctx, pr.PullID)
	if shasErr != nil && !errors.Is(shasErr, hosting.ErrNotFound) {
		return fmt.Errorf("fetching commits of pull request #%s: %w", pr.PullID, shasErr)
	}

	if infoErr != nil || shasErr != nil {
		logDebug("[changelog] pull request #%s not found, rendering its commits individually", pr.PullID)
		return nil
	}

	if info.Title != "" {
		pr.Title = info.Title
	}
	pr.Href = info.Href
	pr.Author = info.Author
	pr.SHAs = shas
	if pr.SHAs == nil {
		pr.SHAs = []string{}
	}
	pr.Commits = []commits.Commit{}
	for _, c := range all {
		if slices.Contains(pr.SHAs, c.SHA) {
			pr.Commits = append(pr.Commits, c)
		}
	}

	logDebug("[changelog] pull request #%s: %d commits reported, %d in release", pr.PullID, len(pr.SHAs), len(pr.Commits))
	return nil
}

// Prune returns a new slice holding only the valid groups.
func Prune(groups []PullRequest) []PullRequest {
	valid := make([]PullRequest, 0, len(groups))
	for _, pr := range groups {
		if pr.Valid() {
			valid = append(valid, pr)
			continue
		}
		logDebug("[changelog] dropping pull request #%s", pr.PullID)
	}
	return valid
}

// Orphans returns the commits that are neither pull request merges nor
// members of one of the given groups, in log order.
func Orphans(all []commits.Commit, groups []PullRequest) []commits.Commit {
	claimed := map[string]bool{}
	for _, pr := range groups {
		if !pr.Valid() {
			continue
		}
		for _, sha := range pr.SHAs {
			claimed[sha] = true
		}
	}

	orphans := make([]commits.Commit, 0, len(all))
	for _, c := range all {
		if c.Type == commits.TypePR || claimed[c.SHA] {
			continue
		}
		orphans = append(orphans, c)
	}
	return orphans
}
