// Package hosting defines the pull request lookups the changelog needs from a
// code hosting service, together with a GitHub implementation.
package hosting

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the hosting service does not know a pull
// request. Callers treat it as "cannot verify this pull request".
var ErrNotFound = errors.New("pull request not found")

// Error reports a failed request to the hosting service.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for hosting requests.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Author is the account that opened a pull request.
type Author struct {
	Name string `json:"name" yaml:"name"`
	Href string `json:"href" yaml:"href"`
}

// PullInfo is the metadata of one pull request.
type PullInfo struct {
	Title  string `json:"title" yaml:"title"`
	Href   string `json:"href" yaml:"href"`
	Author Author `json:"author" yaml:"author"`
}

// PullRequests looks up pull requests of one repository by id.
// Both methods return an error wrapping ErrNotFound for unknown ids.
type PullRequests interface {
	Get(ctx context.Context, pullID string) (*PullInfo, error)
	Commits(ctx context.Context, pullID string) ([]string, error)
}
