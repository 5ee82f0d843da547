package main

import (
	"os"

	"github.com/boss6825/pharmintel/internal/cli"
)

func main() {
	// No args launches the TUI; cobra routes everything else.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
