package errors

import (
	"fmt"
	"strings"

	"github.com/groupon/nlm/internal/release"
)

// Common error messages for the nlm CLI.
// These templates ensure consistent, actionable error messages.

// MissingManifest creates an error for a package directory without package.json.
func MissingManifest(dir string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("package.json not found in %s", dir),
		"Run nlm from the package root or pass --dir <package dir>",
	)
}

// InvalidRepository creates an error for a repository field nlm cannot resolve.
func InvalidRepository(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"cannot determine the hosted repository",
		"Set \"repository\" in package.json, e.g. \"owner/name\" or \"git@github.com:owner/name\"",
	)
}

// NotGitRepository creates an error for a package outside any git checkout.
func NotGitRepository(dir string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("not a git repository: %s", dir),
		"Run nlm inside a git checkout",
		"Or pass the history explicitly with --log-file",
	)
}

// UnknownRevision creates an error when the starting revision is missing from history.
func UnknownRevision(err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		"release tag not found in history",
		"Fetch tags with: git fetch --tags",
		"Or choose the starting point explicitly with --from <revision>",
	)
}

// InvalidCommits creates an error for commits that block the release verdict.
func InvalidCommits(err *release.InvalidCommitsError) *CLIError {
	return &CLIError{
		Category: History,
		Message:  invalidCommitsMessage(len(err.Commits)),
		Details:  strings.Split(err.Error(), "\n"),
		Remediation: []string{
			"Reword the listed commits: git rebase -i " + err.RebaseFrom,
			"Or accept them as a major release with --accept-invalid-commits",
		},
		Cause: err,
	}
}

func invalidCommitsMessage(n int) string {
	if n == 1 {
		return "1 commit does not follow the commit conventions"
	}
	return fmt.Sprintf("%d commits do not follow the commit conventions", n)
}

// HostingFailure creates an error for failed pull request lookups.
func HostingFailure(err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"fetching pull request data failed",
		"Check that GH_TOKEN or github_token grants read access to the repository",
		"Increase hosting_timeout for slow enterprise hosts",
		"Or render without pull request data using --offline",
	)
}

// ConfigInvalid creates an error for configuration that fails validation.
func ConfigInvalid(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Run 'nlm config keys' to see valid keys and values",
		"Check .nlm.yml, the \"nlm\" section of package.json and NLM_* variables",
	)
}

// InvalidFlagValue creates an error for a flag value outside its allowed set.
func InvalidFlagValue(flag, value string, allowed ...string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid value %q for --%s", value, flag),
		fmt.Sprintf("Valid values: %v", allowed),
	)
}

// NothingToRelease creates an error when a release is required but no commit
// warrants one.
func NothingToRelease() *CLIError {
	return NewRuntimeError(
		"no changes warrant a release",
		"Only commits of type fix, feat, perf, refactor, revert, chore or build trigger a release",
	)
}
