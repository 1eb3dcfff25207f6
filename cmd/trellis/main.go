package main

import (
	"os"

	"github.com/trellisplot/trellis/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
