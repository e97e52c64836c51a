package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/changelog"
	"github.com/groupon/nlm/internal/cli/shared"
	clierrors "github.com/groupon/nlm/internal/errors"
	"github.com/groupon/nlm/internal/output"
)

var (
	changelogSource  sourceFlags
	changelogOffline bool
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Preview the changelog of the next release",
	Long: `Render the changelog of the commits made since the last release.

Commits merged through pull requests are grouped under their pull request
when the hosting service is reachable; with --offline every commit is listed
on its own. Unclassifiable commits never fail the preview.`,
	Example: `  # Changelog of the unreleased commits
  nlm changelog

  # One flat list without emoji, skipping chores and docs
  nlm changelog --layout flat --no-emoji --omit chore,docs

  # Render a recorded log
  git log --format='%H %P%n%B---nlm-split---' | nlm changelog --log-file - --offline`,
	Args: shared.NoArgs,
	RunE: runChangelog,
}

func init() {
	changelogCmd.GroupID = shared.GroupRelease
	addSourceFlags(changelogCmd, &changelogSource)
	changelogCmd.Flags().BoolVar(&changelogOffline, "offline", false, "Skip pull request lookups on the hosting service")
	changelogCmd.Flags().Bool("verbose", false, "List the commits of every pull request")
	changelogCmd.Flags().Bool("no-emoji", false, "Render headings and entries without emoji")
	changelogCmd.Flags().String("layout", "", "Document layout: "+strings.Join(layoutNames(), " or "))
	changelogCmd.Flags().StringSlice("omit", nil, "Category keys or commit types to leave out")
	rootCmd.AddCommand(changelogCmd)
}

func runChangelog(cmd *cobra.Command, args []string) error {
	overrides, err := changelogOverrides(cmd)
	if err != nil {
		return err
	}

	pkg, err := shared.LoadPackage(cmd, overrides)
	if err != nil {
		return err
	}
	pkg.Config.AcceptInvalidCommits = true

	result, err := prepareRelease(cmd, pkg, changelogSource, changelogOffline)
	if err != nil {
		return err
	}

	if result.Changelog == "" {
		output.Notice(cmd.ErrOrStderr(), "No changes since %s", pkg.Manifest.ReleaseMarker())
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Changelog)
	return err
}

// changelogOverrides turns the explicitly given rendering flags into
// configuration overrides.
func changelogOverrides(cmd *cobra.Command) (map[string]any, error) {
	overrides := map[string]any{}
	flags := cmd.Flags()

	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides["changelog.verbose"] = v
	}
	if flags.Changed("no-emoji") {
		v, _ := flags.GetBool("no-emoji")
		overrides["emoji.skip"] = v
	}
	if flags.Changed("layout") {
		v, _ := flags.GetString("layout")
		layout, err := changelog.ParseLayout(v)
		if err != nil {
			return nil, clierrors.InvalidFlagValue("layout", v, layoutNames()...)
		}
		overrides["changelog.layout"] = string(layout)
	}
	if flags.Changed("omit") {
		v, _ := flags.GetStringSlice("omit")
		for _, key := range v {
			if !changelog.IsOmitKey(key) {
				return nil, clierrors.InvalidFlagValue("omit", key, omitNames()...)
			}
		}
		overrides["changelog.omit"] = v
	}

	return overrides, nil
}

func layoutNames() []string {
	names := make([]string, 0, len(changelog.Layouts()))
	for _, l := range changelog.Layouts() {
		names = append(names, string(l))
	}
	return names
}

func omitNames() []string {
	names := make([]string, 0, len(changelog.Categories()))
	for _, c := range changelog.Categories() {
		names = append(names, c.Key())
	}
	return names
}
