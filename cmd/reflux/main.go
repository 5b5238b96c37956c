// Command reflux runs and validates todo scenarios on a virtual clock.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/reflux/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
