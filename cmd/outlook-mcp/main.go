package main

import (
	"os"

	"github.com/custodia-labs/outlook-mcp/internal/adapters/driving/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		// cobra already printed the error.
		return 1
	}
	return 0
}
