package main

import (
	"os"

	"github.com/ppiankov/rentwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
