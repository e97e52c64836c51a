package cli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// fileSource reads pre-recorded log output in the commits.LogFormat format.
// The path "-" reads from in.
type fileSource struct {
	path string
	in   io.Reader
}

func (s fileSource) Log(ctx context.Context, fromRevision string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		data []byte
		err  error
	)
	if s.path == "-" {
		data, err = io.ReadAll(s.in)
	} else {
		data, err = os.ReadFile(s.path)
	}
	if err != nil {
		return "", fmt.Errorf("reading log file %s: %w", s.path, err)
	}
	return string(data), nil
}
