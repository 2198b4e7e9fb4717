// Command complexc verifies, formats and folds modules of the complex
// dialect.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/complexir/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "complexc: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
