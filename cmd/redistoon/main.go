// Package main provides the redistoon command.
package main

import (
	"os"

	"github.com/DreamStack-us/redisTOON/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
