package changelog

import (
	"regexp"
	"slices"

	"github.com/groupon/nlm/internal/commits"
)

// Category is a changelog section. The numeric order is the rendering order.
type Category int

const (
	CategoryBreaking Category = iota
	CategoryFeat
	CategoryPerf
	CategoryRefactor
	CategoryFix
	CategoryDep
	CategoryRevert
	CategoryStyle
	CategoryDocs
	CategoryInternal
)

type categoryInfo struct {
	key   string
	title string
	emoji string
}

var categoryTable = [...]categoryInfo{
	CategoryBreaking: {key: "breaking", title: "Breaking Changes", emoji: "💥"},
	CategoryFeat:     {key: "feat", title: "New Features", emoji: "🚀"},
	CategoryPerf:     {key: "perf", title: "Performance Improvements", emoji: "⚡"},
	CategoryRefactor: {key: "refactor", title: "Code Refactoring", emoji: "📦️"},
	CategoryFix:      {key: "fix", title: "Bug Fixes", emoji: "🐛"},
	CategoryDep:      {key: "dep", title: "Dependencies", emoji: "🔼"},
	CategoryRevert:   {key: "revert", title: "Reverts", emoji: "↩️"},
	CategoryStyle:    {key: "style", title: "Polish", emoji: "💅"},
	CategoryDocs:     {key: "docs", title: "Documentation", emoji: "📝"},
	CategoryInternal: {key: "internal", title: "Internal", emoji: "🏡"},
}

// Categories returns every category in rendering order.
func Categories() []Category {
	all := make([]Category, len(categoryTable))
	for i := range categoryTable {
		all[i] = Category(i)
	}
	return all
}

func (c Category) info() categoryInfo {
	if c < 0 || int(c) >= len(categoryTable) {
		return categoryTable[CategoryInternal]
	}
	return categoryTable[c]
}

// Key is the configuration name of the category, e.g. "feat".
func (c Category) Key() string { return c.info().key }

// Title is the section heading, e.g. "New Features".
func (c Category) Title() string { return c.info().title }

func (c Category) String() string { return c.Key() }

// ParseCategory looks a category up by key.
func ParseCategory(key string) (Category, bool) {
	for i, info := range categoryTable {
		if info.key == key {
			return Category(i), true
		}
	}
	return CategoryInternal, false
}

// categoryForType maps a commit type token to its section. Anything without a
// dedicated section is internal.
func categoryForType(t string) Category {
	switch commits.Type(t) {
	case commits.TypeFeat:
		return CategoryFeat
	case commits.TypePerf:
		return CategoryPerf
	case commits.TypeRefactor:
		return CategoryRefactor
	case commits.TypeFix:
		return CategoryFix
	case commits.TypeRevert:
		return CategoryRevert
	case commits.TypeStyle:
		return CategoryStyle
	case commits.TypeDocs:
		return CategoryDocs
	}
	if t == CategoryDep.Key() {
		return CategoryDep
	}
	return CategoryInternal
}

var (
	// dependencyPattern flags version bumps such as "foo@1.2.3" or
	// "bump lodash to v4.17.21". It also matches plenty of text that is not
	// about dependencies, e.g. "support 10x".
	dependencyPattern = regexp.MustCompile(`(?im)[@\w/-_.]+[@\s]v?\d+[0-9x.]+`)

	leadingType = regexp.MustCompile(`^(\w+):`)
)

// classify returns the category of an entry and the raw type token it was
// derived from. title is "type: subject" for commits and the pull request
// title for pull requests.
func classify(title string) (Category, string) {
	token := ""
	if m := leadingType.FindStringSubmatch(title); m != nil {
		token = m[1]
	}
	if dependencyPattern.MatchString(title) {
		return CategoryDep, token
	}
	if token == "" {
		return CategoryInternal, token
	}
	return categoryForType(token), token
}

// typeEmoji decorates commit types in the flat layout.
var typeEmoji = map[string]string{
	"breaking": "💥",
	"feat":     "✨",
	"fix":      "🐛",
	"perf":     "⚡",
	"refactor": "📦️",
	"chore":    "♻️",
	"build":    "👷",
	"revert":   "↩️",
	"docs":     "📝",
	"style":    "🎨",
	"test":     "✅",
	"ci":       "💚",
}

// IsEmojiKey reports whether key can be used in EmojiOptions.Set.
func IsEmojiKey(key string) bool {
	if _, ok := ParseCategory(key); ok {
		return true
	}
	_, ok := typeEmoji[key]
	return ok
}

// IsOmitKey reports whether key can be used in Options.Omit.
func IsOmitKey(key string) bool {
	if _, ok := ParseCategory(key); ok {
		return true
	}
	return commits.Type(key).IsKnown()
}

// EmojiKeys returns the accepted EmojiOptions.Set keys, sorted.
func EmojiKeys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, info := range categoryTable {
		if !seen[info.key] {
			seen[info.key] = true
			keys = append(keys, info.key)
		}
	}
	for key := range typeEmoji {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// categoryEmoji returns the heading emoji of a category, or "" when emoji are
// skipped.
func categoryEmoji(c Category, opts EmojiOptions) string {
	if opts.Skip {
		return ""
	}
	if e, ok := opts.Set[c.Key()]; ok {
		return e
	}
	return c.info().emoji
}

// commitEmoji returns the flat-layout emoji of a commit type, or "".
func commitEmoji(t string, opts EmojiOptions) string {
	if opts.Skip {
		return ""
	}
	if e, ok := opts.Set[t]; ok {
		return e
	}
	return typeEmoji[t]
}
