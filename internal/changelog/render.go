package changelog

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/groupon/nlm/internal/commits"
	"github.com/groupon/nlm/internal/hosting"
	"github.com/groupon/nlm/internal/repository"
)

const headline = "####"

// entry is one bullet of the changelog before grouping.
type entry struct {
	category Category
	text     string
}

// Generate groups pull requests and renders the changelog of all.
func Generate(ctx context.Context, info *repository.Info, all []commits.Commit, pulls hosting.PullRequests, opts Options) (string, error) {
	groups, err := GroupPullRequests(ctx, all, pulls)
	if err != nil {
		return "", err
	}
	return RenderString(info, all, groups, opts)
}

// Render writes the changelog for all, using the given valid pull request
// groups. Commits claimed by a group are rendered as part of it; breaking
// change notes are collected from every commit and always come first.
func Render(w io.Writer, info *repository.Info, all []commits.Commit, groups []PullRequest, opts Options) error {
	layout, err := ParseLayout(string(opts.Layout))
	if err != nil {
		return err
	}

	r := renderer{info: info, opts: opts, layout: layout}
	doc := r.document(all, groups)

	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}

// RenderString is a convenience function that renders to a string.
func RenderString(info *repository.Info, all []commits.Commit, groups []PullRequest, opts Options) (string, error) {
	var b strings.Builder
	if err := Render(&b, info, all, groups, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

type renderer struct {
	info   *repository.Info
	opts   Options
	layout Layout
}

func (r renderer) document(all []commits.Commit, groups []PullRequest) string {
	entries := r.entries(groups, Orphans(all, groups))
	breaking := ""
	if !r.omitted(CategoryBreaking, "") {
		breaking = r.breakingChanges(all)
	}

	if r.layout == LayoutFlat {
		return r.flat(breaking, entries)
	}
	return r.categorized(breaking, entries)
}

func (r renderer) categorized(breaking string, entries []entry) string {
	var sections []string
	if breaking != "" {
		sections = append(sections, r.heading(CategoryBreaking)+"\n\n"+breaking)
	}

	for _, cat := range Categories() {
		var lines []string
		for _, e := range entries {
			if e.category == cat {
				lines = append(lines, e.text)
			}
		}
		if len(lines) > 0 {
			sections = append(sections, r.heading(cat)+"\n\n"+strings.Join(lines, "\n"))
		}
	}

	return strings.Join(sections, "\n\n")
}

func (r renderer) flat(breaking string, entries []entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.text)
	}
	list := strings.Join(lines, "\n")

	if breaking == "" {
		return list
	}

	title := CategoryBreaking.Title()
	if emoji := commitEmoji("breaking", r.opts.Emoji); emoji != "" {
		title = emoji + " " + title
	}
	doc := headline + " " + title + "\n\n" + breaking
	if list != "" {
		doc += "\n\n" + headline + " Commits\n\n" + list
	}
	return doc
}

func (r renderer) heading(c Category) string {
	if emoji := categoryEmoji(c, r.opts.Emoji); emoji != "" {
		return headline + " " + emoji + " " + c.Title()
	}
	return headline + " " + c.Title()
}

// entries renders pull requests first, then orphan commits, skipping omitted
// ones.
func (r renderer) entries(groups []PullRequest, orphans []commits.Commit) []entry {
	var out []entry
	for _, pr := range groups {
		cat, token := classify(pr.Title)
		if r.omitted(cat, token) {
			continue
		}
		out = append(out, entry{category: cat, text: "* " + r.pullRequest(pr)})
	}
	for _, c := range orphans {
		cat, token := classify(string(c.Type) + ": " + c.Subject)
		if c.Type == commits.TypeNone {
			cat, token = CategoryInternal, ""
		}
		if r.omitted(cat, token) {
			continue
		}
		out = append(out, entry{category: cat, text: "* " + r.commit(c)})
	}
	return out
}

func (r renderer) omitted(cat Category, token string) bool {
	for _, key := range r.opts.Omit {
		if key == cat.Key() || (token != "" && key == token) {
			return true
		}
	}
	return false
}

func (r renderer) pullRequest(pr PullRequest) string {
	line := fmt.Sprintf("[#%s](%s) %s ([@%s](%s))", pr.PullID, pr.Href, pr.Title, pr.Author.Name, pr.Author.Href)
	if !r.opts.Verbose {
		return line
	}

	lines := []string{line}
	for _, c := range pr.Commits {
		lines = append(lines, "  - "+r.commit(c))
	}
	return strings.Join(lines, "\n")
}

func (r renderer) commit(c commits.Commit) string {
	var subject string
	switch {
	case c.Type == commits.TypeNone:
		subject = c.Header
	case r.layout == LayoutFlat:
		subject = fmt.Sprintf("**%s:** %s", c.Type, c.Subject)
		if emoji := commitEmoji(string(c.Type), r.opts.Emoji); emoji != "" {
			subject = emoji + " " + subject
		}
	default:
		subject = fmt.Sprintf("%s: %s", c.Type, c.Subject)
	}

	return r.commitLink(c) + " " + subject + formatReferences(c.References)
}

func (r renderer) commitLink(c commits.Commit) string {
	href := strings.Join([]string{r.info.HTMLBase, r.info.Owner, r.info.Name, "commit", c.SHA}, "/")
	return fmt.Sprintf("[`%s`](%s)", c.ShortSHA(), href)
}

func formatReferences(refs []commits.Reference) string {
	refs = slices.DeleteFunc(slices.Clone(refs), commits.Reference.IsMerge)
	if len(refs) == 0 {
		return ""
	}

	links := make([]string, 0, len(refs))
	for _, ref := range refs {
		links = append(links, fmt.Sprintf("[%s%s](%s)", ref.Prefix, ref.Issue, ref.Href))
	}
	return " - see: " + strings.Join(links, ", ")
}

// breakingChanges renders every breaking note of all as
// "<text>\n\n*See: <commit link>*", separated by blank lines.
func (r renderer) breakingChanges(all []commits.Commit) string {
	var blocks []string
	for _, c := range all {
		for _, note := range c.BreakingNotes() {
			blocks = append(blocks, note.Text+"\n\n*See: "+r.commitLink(c)+"*")
		}
	}
	return strings.Join(blocks, "\n\n")
}
