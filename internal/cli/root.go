// Package cli implements the nlm command line: release verification,
// changelog previews and configuration management.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/changelog"
	clicfg "github.com/groupon/nlm/internal/cli/config"
	"github.com/groupon/nlm/internal/cli/shared"
	"github.com/groupon/nlm/internal/cli/util"
	clierrors "github.com/groupon/nlm/internal/errors"
	"github.com/groupon/nlm/internal/git"
	"github.com/groupon/nlm/internal/hosting"
)

var rootCmd = &cobra.Command{
	Use:   "nlm",
	Short: "Semantic releases from conventional commits",
	Long: `nlm classifies the commits made since the last release, decides the
semantic version bump they warrant and renders the changelog for it.

Commit messages follow the AngularJS conventions: "<type>(<scope>): <subject>",
with "BREAKING CHANGE:" notes in the body for incompatible changes.`,
	Example: `  # Check the commits since the last release
  nlm verify

  # Preview the changelog of the next release without calling GitHub
  nlm changelog --offline

  # Release information for another package, as JSON
  nlm verify --dir packages/api --output json`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if !debug {
			git.SetDebugLogger(nil)
			hosting.SetDebugLogger(nil)
			changelog.SetDebugLogger(nil)
			return
		}
		logger := shared.DebugLogger(cmd.ErrOrStderr())
		git.SetDebugLogger(logger)
		hosting.SetDebugLogger(logger)
		changelog.SetDebugLogger(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Package directory containing package.json")
	rootCmd.PersistentFlags().Bool("debug", false, "Log git and hosting activity to stderr")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a configuration key (key=value, repeatable)")

	rootCmd.AddGroup(
		&cobra.Group{ID: shared.GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration Commands:"},
		&cobra.Group{ID: shared.GroupInfo, Title: "Information:"},
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})

	clicfg.ConfigCmd.GroupID = shared.GroupConfiguration
	util.DoctorCmd.GroupID = shared.GroupInfo
	util.VersionCmd.GroupID = shared.GroupInfo
	rootCmd.AddCommand(clicfg.ConfigCmd, util.DoctorCmd, util.VersionCmd)
}

// Execute runs the root command. Failures are reported on stderr and returned
// as a *shared.ExitError carrying the exit code.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return reportError(rootCmd.ExecuteContext(ctx))
}

// reportError prints err with remediation and converts it to an exit code.
func reportError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *shared.ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	dir, _ := rootCmd.PersistentFlags().GetString("dir")
	cliErr := clierrors.Classify(err, dir)
	clierrors.FprintError(rootCmd.ErrOrStderr(), cliErr)
	return shared.NewExitError(shared.CategoryExitCode(cliErr.Category))
}
