// Package main provides the entry point for the docscout CLI.
package main

import (
	"os"

	"github.com/docscout/docscout/cmd/docscout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
