package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/ci"
	"github.com/groupon/nlm/internal/cli/shared"
	clierrors "github.com/groupon/nlm/internal/errors"
	"github.com/groupon/nlm/internal/git"
	"github.com/groupon/nlm/internal/output"
	"github.com/groupon/nlm/internal/release"
)

var (
	verifySource        sourceFlags
	verifyAcceptInvalid bool
	verifyOutput        string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the commits since the last release and report the version bump",
	Long: `Classify the commits made since the last release and report the release
they warrant: none, patch, minor or major.

Commits that do not follow the commit conventions fail the check unless
--accept-invalid-commits is given, in which case they force a major release.
Only the commit history is consulted; the hosting service is never contacted.
Outside a git repository the check is skipped unless --log-file is given.`,
	Example: `  # Verify the package in the current directory
  nlm verify

  # Tolerate free-form commit messages
  nlm verify --accept-invalid-commits

  # Machine-readable release information
  nlm verify --output json`,
	Args: shared.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.GroupID = shared.GroupRelease
	addSourceFlags(verifyCmd, &verifySource)
	verifyCmd.Flags().BoolVar(&verifyAcceptInvalid, "accept-invalid-commits", false, "Treat unclassifiable commits as a major release")
	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(verifyCmd)
}

// verifyReport is the machine-readable verify result.
type verifyReport struct {
	release.Result `yaml:",inline"`
	Branch         string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Publishable    bool   `json:"publishable" yaml:"publishable"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(verifyOutput)
	if err != nil {
		return clierrors.InvalidFlagValue("output", verifyOutput, formatNames()...)
	}

	var overrides map[string]any
	if verifyAcceptInvalid {
		overrides = map[string]any{"accept_invalid_commits": true}
	}
	pkg, err := shared.LoadPackage(cmd, overrides)
	if err != nil {
		return err
	}

	if verifySource.logFile == "" && !git.IsRepository(pkg.Dir) {
		output.Warn(cmd.ErrOrStderr(), "Skipping verify: %s is not a git repository", pkg.Dir)
		return nil
	}

	result, err := verifyRelease(cmd, pkg, verifySource)
	if err != nil {
		return err
	}

	if format != output.FormatText {
		report := verifyReport{
			Result:      *result,
			Branch:      currentBranch(pkg.Dir),
			Publishable: result.Publishable(),
		}
		return output.Encode(cmd.OutOrStdout(), format, report)
	}

	out := cmd.OutOrStdout()
	next := result.NextVersion
	if next == "" {
		next = result.CurrentVersion
	}
	output.Notice(out, "Changes are %q (%s -> %s)", result.ReleaseType.String(), result.CurrentVersion, next)
	if result.PullRequest != "" {
		output.Notice(out, "Pull request #%s: releases are not published from pull request builds", result.PullRequest)
	}
	return nil
}

// currentBranch returns the branch named by the CI environment, falling back
// to the checked out branch.
func currentBranch(dir string) string {
	if branch := ci.Branch(os.Getenv); branch != "" {
		return branch
	}
	branch, err := git.CurrentBranch(dir)
	if err != nil {
		return ""
	}
	return branch
}

func formatNames() []string {
	names := make([]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		names = append(names, string(f))
	}
	return names
}
