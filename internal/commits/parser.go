package commits

import (
	"errors"
	"fmt"
	"strings"
)

// Separator terminates every record of the log format this package reads.
const Separator = "---nlm-split---"

// LogFormat is the `git log --format` value producing records ParseLog understands.
const LogFormat = "%H %P%n%B" + Separator

// ReferenceError reports a pull request merge commit whose own `#<id>`
// reference could not be found among its parsed references.
type ReferenceError struct {
	SHA    string
	PullID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("couldn't find reference to merge of PR #%s in commit %s", e.PullID, e.SHA)
}

// IsReferenceError returns true if the error is a ReferenceError.
func IsReferenceError(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}

// ErrEmptySegment is returned when a log segment carries no commit hash.
var ErrEmptySegment = errors.New("log segment has no commit hash")

// ParseSegment parses one log record: a metadata line holding the commit
// hash and parent hashes, followed by the full commit message.
func ParseSegment(segment string) (Commit, error) {
	segment = strings.TrimSpace(segment)
	meta, message, _ := strings.Cut(segment, "\n")

	fields := strings.Fields(meta)
	if len(fields) == 0 {
		return Commit{}, ErrEmptySegment
	}

	parent := ""
	if len(fields) > 1 {
		parent = fields[1]
	}

	return ParseMessage(fields[0], parent, message)
}

// ParseMessage parses a commit message for the given commit and parent hash.
func ParseMessage(sha, parentSHA, message string) (Commit, error) {
	lines := strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	headerLine := strings.TrimSpace(lines[0])
	bodyLines := lines[1:]

	c := Commit{
		SHA:       sha,
		ParentSHA: parentSHA,
		Header:    headerLine,
		Body:      strings.TrimSpace(strings.Join(bodyLines, "\n")),
	}

	if h, ok := parseHeader(headerLine); ok {
		c.Type = h.Type
		c.Scope = h.Scope
		c.Subject = h.Subject
	}

	applyRevert(&c)

	// Header mentions never carry an action: "fix: #12 crash" is not "Fixes #12".
	for _, ref := range scanReferences(headerLine) {
		ref.Action = ""
		c.References = appendUnique(c.References, ref)
	}
	c.References = appendUnique(c.References, ExtractReferences(c.Body)...)
	c.Notes = scanNotes(bodyLines)

	if err := applyPullMerge(&c); err != nil {
		return Commit{}, err
	}

	return c, nil
}

// applyRevert relabels revert commits. The header becomes `revert: "<msg>"`;
// when the reverted message is itself conventional the commit takes its type
// and subject, otherwise it stays a plain revert of <msg>.
func applyRevert(c *Commit) {
	g, ok := named(revertHeader, c.Header)
	if !ok {
		return
	}

	reverted := g["message"]
	c.Revert = &Revert{Header: reverted}
	if m, ok := named(revertedSHA, c.Body); ok {
		c.Revert.SHA = m["sha"]
	}

	c.Header = `revert: "` + reverted + `"`
	c.Scope = ""

	if h, ok := parseHeader(reverted); ok {
		c.Type = h.Type
		c.Scope = h.Scope
		c.Subject = h.Subject
		return
	}
	c.Type = TypeRevert
	c.Subject = reverted
}

// applyPullMerge marks GitHub merge commits as type pr and turns their `#<id>`
// header reference into a Merges reference owned by the fork owner.
func applyPullMerge(c *Commit) error {
	g, ok := named(pullMergeHeader, c.Header)
	if !ok {
		return nil
	}

	c.Type = TypePR
	c.PullID = g["id"]

	for i := range c.References {
		ref := &c.References[i]
		if ref.Issue != c.PullID || ref.Prefix != "#" {
			continue
		}
		ref.Action = ActionMerges
		ref.Owner = g["owner"]
		ref.Repository = ""
		return nil
	}

	return &ReferenceError{SHA: c.SHA, PullID: c.PullID}
}
