// Package ci reads pull request and branch information that CI services
// expose through environment variables.
package ci

import (
	"regexp"
	"strings"
)

// pullRequestVars are checked in order; "false" means "not a pull request".
var pullRequestVars = []string{
	"DOTCI_PULL_REQUEST",  // DotCI
	"GITHUB_PULL_REQUEST", // Jenkins
	"ghprbPullId",         // Jenkins GitHub Pull Request Builder
	"TRAVIS_PULL_REQUEST", // TravisCI
}

var githubPullRef = regexp.MustCompile(`refs/pull/(\d+)`)

// PullRequestID returns the id of the pull request being built, or "" when the
// build is not for a pull request.
func PullRequestID(getenv func(string) string) string {
	// GitHub Actions, pull_request events only.
	if getenv("GITHUB_ACTIONS") == "true" {
		if m := githubPullRef.FindStringSubmatch(getenv("GITHUB_REF")); m != nil {
			return m[1]
		}
	}

	for _, name := range pullRequestVars {
		if id := getenv(name); id != "" && id != "false" {
			return id
		}
	}

	// CircleCI exposes the pull request URL.
	if url := getenv("CIRCLE_PULL_REQUEST"); url != "" && url != "false" {
		return url[strings.LastIndex(url, "/")+1:]
	}

	return ""
}

// Branch returns the branch name the CI service reports, or "" when none is
// set and the repository must be asked instead.
func Branch(getenv func(string) string) string {
	if getenv("TRAVIS_PULL_REQUEST") == "false" {
		if b := getenv("TRAVIS_BRANCH"); b != "" {
			return b
		}
	}
	for _, name := range []string{"DOTCI_BRANCH", "CIRCLE_BRANCH", "BRANCH"} {
		if b := getenv(name); b != "" {
			return b
		}
	}
	return ""
}
