// Package main provides the tally command-line calculator.
package main

import (
	"os"

	"github.com/leapstack-labs/tally/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
