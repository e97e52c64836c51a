package errors

import (
	stderrors "errors"

	"github.com/groupon/nlm/internal/commits"
	"github.com/groupon/nlm/internal/config"
	"github.com/groupon/nlm/internal/git"
	"github.com/groupon/nlm/internal/hosting"
	"github.com/groupon/nlm/internal/manifest"
	"github.com/groupon/nlm/internal/release"
	"github.com/groupon/nlm/internal/repository"
)

// Classify maps an error returned by the release pipeline to a CLIError with
// remediation. dir is the package directory. Unknown errors become runtime
// errors carrying the original message.
func Classify(err error, dir string) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var invalid *release.InvalidCommitsError
	switch {
	case stderrors.As(err, &invalid):
		return InvalidCommits(invalid)
	case stderrors.Is(err, release.ErrNoChanges):
		return NothingToRelease()
	case commits.IsReferenceError(err):
		return Wrap(err, History, "Check that the merge commit header was not edited")
	case stderrors.Is(err, manifest.ErrNotFound):
		return MissingManifest(dir)
	case repository.IsParseError(err):
		return InvalidRepository(err)
	case stderrors.Is(err, git.ErrNotRepository):
		return NotGitRepository(dir)
	case stderrors.Is(err, git.ErrUnknownRevision):
		return UnknownRevision(err)
	case config.IsValidationError(err):
		return ConfigInvalid(err)
	case stderrors.Is(err, hosting.ErrNotFound), isHostingError(err):
		return HostingFailure(err)
	}

	return Wrap(err, Runtime)
}

// isHostingError reports errors raised while talking to the hosting service.
func isHostingError(err error) bool {
	var he *hosting.Error
	return stderrors.As(err, &he)
}
