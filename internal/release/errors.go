package release

import (
	"errors"
	"strings"

	"github.com/groupon/nlm/internal/commits"
)

// CodeInvalidCommits identifies InvalidCommitsError in machine-readable output.
const CodeInvalidCommits = "EINVALIDCOMMITS"

// rootRebase is the rebase starting point used when the first invalid commit
// has no parent.
const rootRebase = "--root"

const invalidCommitsTemplate = `This repository uses AngularJS Git Commit Message Conventions[1]
to automatically determine the semver implications of changes
and to generate changelogs for releases.

The following commits could not be parsed:

<<COMMITS>>

Most likely they are missing one of the valid type prefixes
(feat, fix, docs, style, refactor, test, chore).

You can reword commit messages using rebase[2]:

~~~bash
git rebase -i <<FIRST_PARENT>>
~~~

[1] Docs on the conventions: http://gr.pn/1OWll98
[2] https://git-scm.com/docs/git-rebase`

// InvalidCommitsError reports commits that could not be classified.
type InvalidCommitsError struct {
	Code    string
	Commits []commits.Commit
	// RebaseFrom is the argument to `git rebase -i` that covers every
	// invalid commit.
	RebaseFrom string
}

// NewInvalidCommitsError builds the error for a non-empty list of commits.
func NewInvalidCommitsError(invalid []commits.Commit) *InvalidCommitsError {
	from := rootRebase
	if len(invalid) > 0 && invalid[0].ParentSHA != "" {
		from = invalid[0].ParentSHA
	}
	return &InvalidCommitsError{
		Code:       CodeInvalidCommits,
		Commits:    invalid,
		RebaseFrom: from,
	}
}

func (e *InvalidCommitsError) Error() string {
	lines := make([]string, 0, len(e.Commits))
	for _, c := range e.Commits {
		lines = append(lines, "* ["+c.ShortSHA()+"] "+c.Header)
	}

	msg := strings.Replace(invalidCommitsTemplate, "<<COMMITS>>", strings.Join(lines, "\n"), 1)
	return strings.Replace(msg, "<<FIRST_PARENT>>", e.RebaseFrom, 1)
}

// IsInvalidCommitsError returns true if the error is an InvalidCommitsError.
func IsInvalidCommitsError(err error) bool {
	var ice *InvalidCommitsError
	return errors.As(err, &ice)
}

// ErrNoChanges is returned when asking for the next version of a release
// that has no changes.
var ErrNoChanges = errors.New("cannot publish without changes")
