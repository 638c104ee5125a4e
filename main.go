// main.go - tabmux entry point
//
// ## Metadata
//
// Terminal multiplexer running several shells as tabs in one terminal window.
//
// ### Purpose
//
// Command-line entry point: parse flags, load configuration, start the first shell
// and hand the terminal to the Bubble Tea interface until the user quits.

package main

import (
	"fmt"
	"os"

	"github.com/natb1/tabmux/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
