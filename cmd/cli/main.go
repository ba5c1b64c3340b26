// Package main is the entry point for the costcalc CLI.
package main

import (
	"os"

	"costcalc/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
