package changelog

import (
	"fmt"

	"github.com/groupon/nlm/internal/commits"
	"github.com/groupon/nlm/internal/hosting"
)

// PullRequest is a pull request merge commit enriched with hosting metadata.
type PullRequest struct {
	PullID string         `json:"pullId" yaml:"pullId"`
	Title  string         `json:"title" yaml:"title"`
	Href   string         `json:"href" yaml:"href"`
	Author hosting.Author `json:"author" yaml:"author"`
	// SHAs lists the commits the hosting service reports for the pull
	// request. It is nil when the pull request could not be fetched.
	SHAs []string `json:"shas" yaml:"shas"`
	// Commits holds the released commits whose SHA is in SHAs, in log order.
	Commits []commits.Commit `json:"commits" yaml:"commits"`
}

// Valid reports whether every commit of the pull request is part of the
// release. Groups that fail this check are dropped and their commits are
// rendered individually.
func (p PullRequest) Valid() bool {
	return p.SHAs != nil && len(p.SHAs) == len(p.Commits)
}

// Layout selects the shape of the rendered document.
type Layout string

const (
	// LayoutCategories renders one section per category.
	LayoutCategories Layout = "categories"
	// LayoutFlat renders all entries in log order under a single list.
	LayoutFlat Layout = "flat"
)

// Layouts returns the supported layouts.
func Layouts() []Layout {
	return []Layout{LayoutCategories, LayoutFlat}
}

// ParseLayout converts a configuration value into a Layout.
// The empty string selects LayoutCategories.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutCategories:
		return LayoutCategories, nil
	case LayoutFlat:
		return LayoutFlat, nil
	}
	return "", fmt.Errorf("unknown changelog layout %q (valid: %s, %s)", s, LayoutCategories, LayoutFlat)
}

// EmojiOptions controls emoji decoration.
type EmojiOptions struct {
	Skip bool `json:"skip" yaml:"skip"`
	// Set overrides emoji by category key or commit type.
	Set map[string]string `json:"set,omitempty" yaml:"set,omitempty"`
}

// Options controls rendering.
type Options struct {
	Emoji EmojiOptions
	// Verbose lists the member commits under every pull request entry.
	Verbose bool
	// Omit drops entries whose category key or commit type is listed.
	Omit   []string
	Layout Layout
}
