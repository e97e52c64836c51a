package main

import (
	"os"

	"github.com/groupon/nlm/internal/cli"
	"github.com/groupon/nlm/internal/cli/shared"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(shared.ExitCode(err))
	}
}
