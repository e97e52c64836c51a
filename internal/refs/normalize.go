// Package refs resolves the raw issue references found in commit messages
// into display prefixes and absolute links for one repository.
package refs

import (
	"regexp"
	"strings"

	"github.com/groupon/nlm/internal/commits"
	"github.com/groupon/nlm/internal/repository"
)

var (
	ticketURL  = regexp.MustCompile(`^https?://[\w.-]+/browse/(?P<project>\w+-)`)
	hostingURL = regexp.MustCompile(`^https?://(?P<host>[^/]+)/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/`)
	anyURL     = regexp.MustCompile(`^https?://`)
)

// Normalize resolves ref in place against the repository described by info.
// The first matching shape wins: ticket tracker URL, hosting issue URL, any
// other URL, then the #N / owner/repo#N shorthand.
func Normalize(info *repository.Info, ref *commits.Reference) {
	if ref.IsMerge() {
		normalizeMerge(info, ref)
		return
	}

	if m := ticketURL.FindStringSubmatch(ref.Prefix); m != nil {
		ref.Prefix = m[ticketURL.SubexpIndex("project")]
		ref.Href = ref.Raw
		return
	}

	if m := hostingURL.FindStringSubmatch(ref.Prefix); m != nil {
		host := m[hostingURL.SubexpIndex("host")]
		ref.Owner = m[hostingURL.SubexpIndex("owner")]
		ref.Repository = m[hostingURL.SubexpIndex("repo")]

		switch {
		case !strings.EqualFold(host, info.Host):
			ref.Prefix = host + "/" + ref.Owner + "/" + ref.Repository + "#"
			ref.Href = ref.Raw
		case ref.Owner != info.Owner || ref.Repository != info.Name:
			ref.Prefix = ref.Owner + "/" + ref.Repository + "#"
			ref.Href = ref.Raw
		default:
			normalizeShorthand(info, ref)
		}
		return
	}

	if anyURL.MatchString(ref.Prefix) {
		ref.Prefix = ""
		ref.Href = ref.Raw
		return
	}

	normalizeShorthand(info, ref)
}

func normalizeShorthand(info *repository.Info, ref *commits.Reference) {
	if ref.Owner == "" {
		ref.Owner = info.Owner
	}
	if ref.Repository == "" {
		ref.Repository = info.Name
	}
	ref.Href = info.HTMLBase + "/" + ref.Owner + "/" + ref.Repository + "/issues/" + ref.Issue

	if ref.Owner == info.Owner && ref.Repository == info.Name {
		ref.Prefix = "#"
	} else {
		ref.Prefix = ref.Owner + "/" + ref.Repository + "#"
	}
}

// normalizeMerge links a pull request merge reference to the pull request of
// this repository. Owner keeps the fork owner parsed from the merge header;
// the pull request itself lives in info's repository.
func normalizeMerge(info *repository.Info, ref *commits.Reference) {
	ref.Prefix = "#"
	ref.Href = info.HTMLBase + "/" + info.Owner + "/" + info.Name + "/pull/" + ref.Issue
}

// NormalizeAll normalizes the references of every commit in place.
func NormalizeAll(info *repository.Info, all []commits.Commit) {
	for i := range all {
		for j := range all[i].References {
			Normalize(info, &all[i].References[j])
		}
	}
}
