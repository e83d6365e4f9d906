// Package main provides the entry point for the shepherd CLI.
package main

import (
	"fmt"
	"os"

	"github.com/avandyck/shepherd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
