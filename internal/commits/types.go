package commits

import (
	"regexp"
	"strings"
)

// Type is the conventional-commit type of a commit.
// The empty Type means the commit message could not be parsed.
type Type string

// Commit types understood by the release tooling.
const (
	TypeNone     Type = ""
	TypeFeat     Type = "feat"
	TypeFix      Type = "fix"
	TypeDocs     Type = "docs"
	TypeStyle    Type = "style"
	TypeRefactor Type = "refactor"
	TypePerf     Type = "perf"
	TypeTest     Type = "test"
	TypeChore    Type = "chore"
	TypeBuild    Type = "build"
	TypeCI       Type = "ci"
	TypeRevert   Type = "revert"
	TypePR       Type = "pr"
)

// KnownTypes returns the commit type vocabulary in documentation order.
func KnownTypes() []Type {
	return []Type{
		TypeFeat, TypeFix, TypeDocs, TypeStyle, TypeRefactor, TypePerf,
		TypeTest, TypeChore, TypeBuild, TypeCI, TypeRevert, TypePR,
	}
}

// IsKnown reports whether t belongs to the commit type vocabulary.
func (t Type) IsKnown() bool {
	for _, k := range KnownTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Note is a free-form footer annotation such as a breaking change description.
type Note struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

var breakingTitle = regexp.MustCompile(`(?i)^BREAKING CHANGES?:?$`)

// IsBreaking reports whether the note announces a breaking change.
func (n Note) IsBreaking() bool {
	return breakingTitle.MatchString(strings.TrimSpace(n.Title))
}

// Reference is a cross-link to an issue, ticket or pull request.
//
// Owner and Repository are empty when the reference points at the repository
// being released. Prefix and Href are display-ready only after normalization.
type Reference struct {
	Raw        string `json:"raw" yaml:"raw"`
	Prefix     string `json:"prefix" yaml:"prefix"`
	Href       string `json:"href,omitempty" yaml:"href,omitempty"`
	Owner      string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	Issue      string `json:"issue" yaml:"issue"`
	Action     string `json:"action,omitempty" yaml:"action,omitempty"`
}

// IsMerge reports whether the reference was synthesized from a pull request merge header.
func (r Reference) IsMerge() bool {
	return r.Action == ActionMerges
}

// ActionMerges is the action attached to the reference of a pull request merge commit.
const ActionMerges = "Merges"

// Revert describes the commit a revert commit undoes.
type Revert struct {
	Header string `json:"header" yaml:"header"`
	SHA    string `json:"sha,omitempty" yaml:"sha,omitempty"`
}

// Commit is one parsed history entry.
type Commit struct {
	SHA        string      `json:"sha" yaml:"sha"`
	ParentSHA  string      `json:"parentSha,omitempty" yaml:"parentSha,omitempty"`
	Type       Type        `json:"type" yaml:"type"`
	Scope      string      `json:"scope,omitempty" yaml:"scope,omitempty"`
	Subject    string      `json:"subject" yaml:"subject"`
	Header     string      `json:"header" yaml:"header"`
	Body       string      `json:"body,omitempty" yaml:"body,omitempty"`
	Notes      []Note      `json:"notes,omitempty" yaml:"notes,omitempty"`
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
	PullID     string      `json:"pullId,omitempty" yaml:"pullId,omitempty"`
	Revert     *Revert     `json:"revert,omitempty" yaml:"revert,omitempty"`
}

// ShortSHA returns the first 7 characters of the commit SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// IsBreaking reports whether any note of the commit announces a breaking change.
func (c Commit) IsBreaking() bool {
	for _, n := range c.Notes {
		if n.IsBreaking() {
			return true
		}
	}
	return false
}

// BreakingNotes returns the notes announcing breaking changes, in message order.
func (c Commit) BreakingNotes() []Note {
	var notes []Note
	for _, n := range c.Notes {
		if n.IsBreaking() {
			notes = append(notes, n)
		}
	}
	return notes
}
