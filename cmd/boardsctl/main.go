// Command boardsctl manages boards and the database from the command line.
package main

import (
	"fmt"
	"os"

	"makerboards/internal/cli"
)

func main() {
	if err := cli.NewCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
