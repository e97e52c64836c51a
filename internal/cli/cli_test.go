package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/groupon/nlm/internal/cli/shared"
	"github.com/groupon/nlm/internal/commits"
)

// ciVars are cleared for every test so the CI running the tests cannot leak
// a pull request id or branch into the results.
var ciVars = []string{
	"GITHUB_ACTIONS", "GITHUB_REF", "DOTCI_PULL_REQUEST", "GITHUB_PULL_REQUEST",
	"ghprbPullId", "TRAVIS_PULL_REQUEST", "CIRCLE_PULL_REQUEST",
	"TRAVIS_BRANCH", "DOTCI_BRANCH", "CIRCLE_BRANCH", "BRANCH",
	"GH_TOKEN", "GITHUB_TOKEN",
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range ciVars {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// resetFlags restores every flag of the command tree to its default so that
// tests sharing the global rootCmd stay independent.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the CLI with args and returns its stdout, stderr and
// exit code.
func executeCommand(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

// executeCommandWithInput is executeCommand with input on stdin.
func executeCommandWithInput(t *testing.T, input string, args ...string) (string, string, int) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := reportError(rootCmd.ExecuteContext(context.Background()))
	return stdout.String(), stderr.String(), shared.ExitCode(err)
}

// writePackage creates a package directory with the given package.json.
func writePackage(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
	return dir
}

// writeLog records log output for the given "<sha> <parent>\n<message>"
// records and returns its path.
func writeLog(t *testing.T, records ...string) string {
	t.Helper()
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r)
		b.WriteString("\n")
		b.WriteString(commits.Separator)
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "commits.log")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

const testManifest = `{
  "name": "pkg",
  "version": "1.2.3",
  "repository": {"url": "git+https://github.com/usr/proj.git"}
}`
