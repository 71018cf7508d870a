// Command daa runs declarative test scenarios built from composable
// verified actions and reports their verification ledgers.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/daa/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
