package main

import (
	"os"

	"github.com/quantops/modellab/cmd/modellab/commands"
)

// main is the entry point for the modellab CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
