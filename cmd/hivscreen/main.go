// Command hivscreen explores HIV-1 screening datasets of small molecules.
package main

import (
	"os"

	"github.com/turtacn/hivscreen/internal/interfaces/cli"
	"github.com/turtacn/hivscreen/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(errors.ExitStatusForCode(errors.GetCode(err)))
	}
}

//Personal.AI order the ending
