// Package main provides the s101ci command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/structkit/s101ci/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
