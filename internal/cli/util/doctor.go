package util

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/cli/shared"
	clierrors "github.com/groupon/nlm/internal/errors"
	"github.com/groupon/nlm/internal/health"
	"github.com/groupon/nlm/internal/output"
)

// DoctorCmd checks that a package is ready for nlm.
var DoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the package is ready for releases",
	Long: `Check the package in --dir: its package.json and version, the repository
field, the git checkout and release tag, the configuration and the GitHub
token used for pull request lookups.

Exits with code 4 when a required check fails.`,
	Example: `  # Check the current package
  nlm doctor

  # Machine-readable report
  nlm doctor --output json`,
	Args: shared.NoArgs,
	RunE: runDoctor,
}

func init() {
	DoctorCmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	value, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(value)
	if err != nil {
		return clierrors.InvalidFlagValue("output", value, "text", "json", "yaml")
	}

	dir, _ := cmd.Flags().GetString("dir")
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving package directory: %w", err)
	}

	report := health.RunHealthChecks(abs, health.Options{})

	out := cmd.OutOrStdout()
	if format == output.FormatText {
		fmt.Fprint(out, health.FormatReport(report))
		if report.Passed {
			fmt.Fprintln(out, color.New(color.FgGreen).Sprint("Ready to release."))
		}
	} else if err := output.Encode(out, format, report); err != nil {
		return err
	}

	if !report.Passed {
		return shared.NewExitError(shared.ExitMissingDependency)
	}
	return nil
}
