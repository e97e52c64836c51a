package commits

import (
	"regexp"
	"strings"
)

// header is the result of matching a conventional-commit header.
type header struct {
	Type    Type
	Scope   string
	Subject string
}

// parseHeader applies the `type(scope)?: subject` grammar to a header line.
// The type is a run of word characters, the optional scope runs up to the last
// "): " of the line. Returns false when the line is not a conventional header.
func parseHeader(line string) (header, bool) {
	i := 0
	for i < len(line) && isWordByte(line[i]) {
		i++
	}
	if i == 0 {
		return header{}, false
	}

	h := header{Type: Type(line[:i])}
	rest := line[i:]

	if strings.HasPrefix(rest, "(") {
		end := strings.LastIndex(rest, "): ")
		if end < 0 {
			return header{}, false
		}
		h.Scope = rest[1:end]
		rest = rest[end+1:]
	}

	if !strings.HasPrefix(rest, ": ") {
		return header{}, false
	}
	h.Subject = rest[2:]
	return h, true
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

var (
	// revertHeader matches both `revert: "msg"` and git's own `Revert "msg"`.
	revertHeader = regexp.MustCompile(`(?i)^revert:?\s"(?P<message>.*)"$`)
	revertedSHA  = regexp.MustCompile(`This reverts commit (?P<sha>[0-9a-fA-F]{7,40})`)

	// pullMergeHeader matches the header GitHub writes for merged pull requests.
	pullMergeHeader = regexp.MustCompile(`^Merge pull request #(?P<id>\d+) from (?P<owner>[^/\s]+)/(?P<branch>\S+)`)

	noteStart = regexp.MustCompile(`(?i)^[\s|*]*(?P<title>BREAKING CHANGES?)(?:[:\s]+(?P<text>.*))?$`)
)

// named returns the named capture groups of a match.
func named(re *regexp.Regexp, s string) (map[string]string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups, true
}

// referenceActions are the verbs that mark a reference as resolved by the commit.
var referenceActions = map[string]bool{
	"close":    true,
	"closes":   true,
	"closed":   true,
	"fix":      true,
	"fixes":    true,
	"fixed":    true,
	"resolve":  true,
	"resolves": true,
	"resolved": true,
}

func isAction(token string) bool {
	return referenceActions[strings.ToLower(token)]
}

var (
	// urlReference splits an absolute URL into the part before the issue id and
	// the id itself. The greedy prefix makes the last '-' or '/' the separator.
	urlReference = regexp.MustCompile(`^(?P<prefix>https?://[\w./:-]*[-/]+)(?P<issue>[\w-]*\d+)`)

	// shorthandReference matches `#12` and `owner/repo#12`.
	shorthandReference = regexp.MustCompile(`^(?:(?P<owner>[\w.-]+)/(?P<repo>[\w.-]+))?(?P<prefix>#)(?P<issue>[\w-]*\d+)$`)
)

// lexLine splits a line into tokens on whitespace and bracketing punctuation.
// Trailing sentence punctuation is trimmed from every token.
func lexLine(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', '\t', '\r', '\n', ',', ';', '(', ')', '[', ']', '<', '>', '"', '\'', '`':
			return true
		}
		return false
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ".:!?")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// lexReference classifies a single token as a reference.
func lexReference(token string) (Reference, bool) {
	if g, ok := named(urlReference, token); ok {
		return Reference{
			Raw:    g["prefix"] + g["issue"],
			Prefix: g["prefix"],
			Issue:  g["issue"],
		}, true
	}
	if g, ok := named(shorthandReference, token); ok {
		return Reference{
			Raw:        token,
			Prefix:     g["prefix"],
			Owner:      g["owner"],
			Repository: g["repo"],
			Issue:      g["issue"],
		}, true
	}
	return Reference{}, false
}

// scanReferences extracts references from one line. An action keyword applies
// to every reference following it until a plain word interrupts the list.
func scanReferences(line string) []Reference {
	var (
		refs   []Reference
		action string
	)
	for _, token := range lexLine(line) {
		if isAction(token) {
			action = token
			continue
		}
		ref, ok := lexReference(token)
		if !ok {
			if !strings.EqualFold(token, "and") {
				action = ""
			}
			continue
		}
		ref.Action = action
		refs = append(refs, ref)
	}
	return refs
}

// isReferenceLine reports whether a line starts with an action keyword
// followed by at least one reference, e.g. "Closes #12".
func isReferenceLine(line string) bool {
	tokens := lexLine(line)
	if len(tokens) < 2 || !isAction(tokens[0]) {
		return false
	}
	_, ok := lexReference(tokens[1])
	return ok
}

// ExtractReferences returns the raw references mentioned in text, one per
// distinct raw token, in order of first appearance.
func ExtractReferences(text string) []Reference {
	var refs []Reference
	for _, line := range strings.Split(text, "\n") {
		refs = appendUnique(refs, scanReferences(line)...)
	}
	return refs
}

func appendUnique(refs []Reference, more ...Reference) []Reference {
	for _, ref := range more {
		dup := false
		for i := range refs {
			if refs[i].Raw == ref.Raw {
				if refs[i].Action == "" {
					refs[i].Action = ref.Action
				}
				dup = true
				break
			}
		}
		if !dup {
			refs = append(refs, ref)
		}
	}
	return refs
}

// scanNotes collects breaking-change notes from the body lines. A note runs
// until the next note or the next reference line.
func scanNotes(lines []string) []Note {
	var (
		notes   []Note
		current *Note
		text    []string
	)

	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(text, "\n"))
			notes = append(notes, *current)
		}
		current = nil
		text = nil
	}

	for _, line := range lines {
		if g, ok := named(noteStart, line); ok {
			flush()
			current = &Note{Title: g["title"]}
			text = []string{g["text"]}
			continue
		}
		if current == nil {
			continue
		}
		if isReferenceLine(line) {
			flush()
			continue
		}
		text = append(text, line)
	}
	flush()

	return notes
}
