package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/groupon/nlm/internal/commits"
)

// neverReleased is the revision marking a package without any release.
const neverReleased = "v0.0.0"

// ErrUnknownRevision is returned when the starting revision cannot be resolved.
var ErrUnknownRevision = errors.New("unknown revision")

// Source produces raw commit log records for the repository containing Dir.
type Source struct {
	Dir string
}

// New returns a Source for the repository containing dir.
func New(dir string) *Source {
	return &Source{Dir: dir}
}

// Log returns the commits reachable from HEAD but not from fromRevision,
// parents before children, in the record format of commits.LogFormat. An empty
// fromRevision or "v0.0.0" selects the whole history. A repository without
// commits yields empty output.
func (s *Source) Log(ctx context.Context, fromRevision string) (string, error) {
	repo, err := openRepo(s.Dir)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			logDebug("[git] Log: repository has no commits")
			return "", nil
		}
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	exclude, err := ancestors(repo, fromRevision)
	if err != nil {
		return "", err
	}

	tip, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("reading HEAD commit: %w", err)
	}

	ordered, err := parentsFirst(ctx, tip, exclude)
	if err != nil {
		return "", fmt.Errorf("walking log: %w", err)
	}

	records := make([]string, 0, len(ordered))
	for _, c := range ordered {
		records = append(records, formatRecord(c))
	}

	logDebug("[git] Log: %d commits since %q", len(records), fromRevision)
	return strings.Join(records, ""), nil
}

// ancestors returns the commit fromRevision resolves to and every commit
// reachable from it.
func ancestors(repo *git.Repository, fromRevision string) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	if fromRevision == "" || fromRevision == neverReleased {
		return seen, nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(fromRevision))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownRevision, fromRevision, err)
	}

	start, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", hash, err)
	}

	err = object.NewCommitPreorderIter(start, nil, nil).ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("walking ancestors of %s: %w", fromRevision, err)
	}
	return seen, nil
}

// parentsFirst returns tip and its ancestors that are not excluded, every
// commit after all of its parents. First parents are visited before merged
// branches, the order of `git log --reverse --topo-order`. Commit dates are
// never consulted. Parents missing from a shallow clone end the walk.
func parentsFirst(ctx context.Context, tip *object.Commit, exclude map[plumbing.Hash]bool) ([]*object.Commit, error) {
	type frame struct {
		commit *object.Commit
		next   int
	}

	var ordered []*object.Commit
	if exclude[tip.Hash] {
		return ordered, nil
	}

	visited := map[plumbing.Hash]bool{tip.Hash: true}
	stack := []*frame{{commit: tip}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		if top.next == top.commit.NumParents() {
			stack = stack[:len(stack)-1]
			ordered = append(ordered, top.commit)
			continue
		}

		i := top.next
		top.next++
		hash := top.commit.ParentHashes[i]
		if exclude[hash] || visited[hash] {
			continue
		}
		visited[hash] = true

		parent, err := top.commit.Parent(i)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			logDebug("[git] Log: parent %s of %s is missing", hash, top.commit.Hash)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading parent %s of %s: %w", hash, top.commit.Hash, err)
		}
		stack = append(stack, &frame{commit: parent})
	}
	return ordered, nil
}

func formatRecord(c *object.Commit) string {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	var b strings.Builder
	b.WriteString(c.Hash.String())
	b.WriteString(" ")
	b.WriteString(strings.Join(parents, " "))
	b.WriteString("\n")
	b.WriteString(c.Message)
	b.WriteString(commits.Separator)
	b.WriteString("\n")
	return b.String()
}
