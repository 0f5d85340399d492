// Command treetaskd runs the treetask scheduler as a standalone process,
// mainly for exercising its metrics and dispatch fairness outside of a
// host program that embeds the package directly.
package main

import (
	"fmt"
	"os"

	"github.com/chuliyu/treetask/internal/cli"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
