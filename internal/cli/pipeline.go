package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/ci"
	"github.com/groupon/nlm/internal/cli/shared"
	"github.com/groupon/nlm/internal/git"
	"github.com/groupon/nlm/internal/hosting"
	"github.com/groupon/nlm/internal/progress"
	"github.com/groupon/nlm/internal/release"
	"github.com/groupon/nlm/internal/repository"
)

// sourceFlags select where commits come from.
type sourceFlags struct {
	from    string
	logFile string
	pr      string
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVar(&f.from, "from", "", "Revision after which commits are unreleased (default: v<manifest version>)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Read commits from a recorded log instead of git (- for stdin); tag markers are resolved in the package's git checkout")
	cmd.Flags().StringVar(&f.pr, "pr", "", "Pull request being built (default: detected from the CI environment)")
}

// logSource returns the commit source selected by the flags.
func (f sourceFlags) logSource(cmd *cobra.Command, dir string) release.LogSource {
	if f.logFile != "" {
		return fileSource{path: f.logFile, in: cmd.InOrStdin()}
	}
	return git.New(dir)
}

// pullRequest returns the --pr value or the id found in the CI environment.
func (f sourceFlags) pullRequest() string {
	if f.pr != "" {
		return f.pr
	}
	return ci.PullRequestID(os.Getenv)
}

// pullRequests returns the hosting client for info, or nil when offline.
func pullRequests(pkg *shared.Package, info *repository.Info, offline bool) (hosting.PullRequests, error) {
	if offline {
		return nil, nil
	}
	gh, err := hosting.NewGitHub(info, hosting.GitHubOptions{
		Token:   pkg.Config.GitHubToken,
		Timeout: pkg.Config.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	return gh, nil
}

// fromRevision returns the --from value. Recorded logs only carry hashes, so
// for --log-file a tag marker is resolved in the package's git checkout when
// there is one. An unresolved marker leaves the whole log unreleased.
func (f sourceFlags) fromRevision(pkg *shared.Package) string {
	if f.logFile == "" {
		return f.from
	}
	marker := f.from
	if marker == "" {
		marker = pkg.Manifest.ReleaseMarker()
	}
	hash, err := git.ResolveRevision(pkg.Dir, marker)
	if err != nil {
		return f.from
	}
	return hash
}

// releaseOptions builds the release options for pkg from the flags.
func releaseOptions(pkg *shared.Package, f sourceFlags) release.Options {
	return release.Options{
		AcceptInvalidCommits: pkg.Config.AcceptInvalidCommits,
		PullRequest:          f.pullRequest(),
		From:                 f.fromRevision(pkg),
		Changelog:            pkg.Config.ChangelogOptions(),
	}
}

// verifyRelease computes the release verdict for pkg from its history alone.
func verifyRelease(cmd *cobra.Command, pkg *shared.Package, f sourceFlags) (*release.Result, error) {
	return release.VerifyFromLog(cmd.Context(), f.logSource(cmd, pkg.Dir), pkg.Manifest, releaseOptions(pkg, f))
}

// prepareRelease runs the release pipeline for pkg with progress on stderr.
func prepareRelease(cmd *cobra.Command, pkg *shared.Package, f sourceFlags, offline bool) (*release.Result, error) {
	info, err := repository.Parse(pkg.Manifest.Repository)
	if err != nil {
		return nil, err
	}

	pulls, err := pullRequests(pkg, info, offline)
	if err != nil {
		return nil, err
	}

	from := f.from
	if from == "" {
		from = pkg.Manifest.ReleaseMarker()
	}

	indicator := newIndicator(cmd)
	indicator.Start(fmt.Sprintf("Collecting changes of %s since %s", info.Slug(), from))
	result, err := release.PrepareFromLog(cmd.Context(), f.logSource(cmd, pkg.Dir), pkg.Manifest, pulls, releaseOptions(pkg, f))
	indicator.Stop(err)

	return result, err
}

// newIndicator reports progress on the command's stderr, animated only when
// that is a terminal.
func newIndicator(cmd *cobra.Command) *progress.Indicator {
	w := cmd.ErrOrStderr()
	var caps progress.TerminalCapabilities
	if f, ok := w.(*os.File); ok {
		caps = progress.DetectTerminalCapabilities(f)
	}
	return progress.NewIndicator(w, caps)
}
