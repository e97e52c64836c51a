// Package shared provides constants and helpers used across CLI subpackages.
package shared

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	clierrors "github.com/groupon/nlm/internal/errors"
)

// Exit codes for the nlm CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime or configuration failure
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingDependency indicates a missing manifest, repository or tag
	ExitMissingDependency = 4

	// ExitInvalidCommits indicates commits that block the release verdict
	ExitInvalidCommits = 6
)

// Command group IDs
const (
	GroupRelease       = "release"
	GroupConfiguration = "configuration"
	GroupInfo          = "info"
)

// ExitError carries a process exit code through cobra's error return.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError returns an error that makes the process exit with code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode returns the exit code for err: ExitSuccess for nil, the carried
// code for an ExitError and ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CategoryExitCode maps an error category to its exit code.
func CategoryExitCode(c clierrors.ErrorCategory) int {
	switch c {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingDependency
	case clierrors.History:
		return ExitInvalidCommits
	default:
		return ExitFailure
	}
}

// DebugLogger returns a debug logger writing "[debug] "-prefixed lines to w.
func DebugLogger(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, "[debug] "+format+"\n", args...)
	}
}

// NoArgs rejects positional arguments with an argument error.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("unexpected argument %q", args[0]),
			cmd.UseLine(),
		)
	}
	return nil
}
