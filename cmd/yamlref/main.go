// Command yamlref parses YAML streams, resolves their anchors, aliases and
// tags, and renders the result.
//
// Usage:
//
//	# Print the tree of every document
//	yamlref parse config.yaml
//
//	# Print the token stream
//	yamlref parse --tokens config.yaml
//
//	# Resolve aliases and merge keys and print the result
//	yamlref resolve config.yaml
//
//	# Resolve with statistics and a metrics dump
//	yamlref resolve --stats --metrics config.yaml
//
//	# Check files without printing them
//	yamlref validate a.yaml b.yaml
//
//	# Re-resolve a file every time it changes
//	yamlref watch config.yaml
//
// A "-" file name, or no file name, reads standard input.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
