package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yaml"
)

func newParseCommand(a *app) *cobra.Command {
	var tokens bool
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of every document",
		Long: `Parse a YAML stream and print the tree of every document without resolving
aliases or tags.

Examples:
  # Print the tree
  yamlref parse config.yaml

  # Print the tokens instead
  yamlref parse --tokens config.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, text, err := a.readInput(args)
			if err != nil {
				return err
			}
			if tokens {
				return printTokens(a.out, text)
			}
			stream, err := yaml.Load(text, a.options()...)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			for i, d := range stream.Documents {
				fmt.Fprintf(a.out, "document %d (%s)\n", i, d.Position)
				printTree(a.out, d.Root, 1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tokens, "tokens", false, "print the token stream instead of the tree")
	return cmd
}

func printTokens(w io.Writer, text string) error {
	for tok, err := range tokenizer.NewLexer(text).Tokens() {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", tok.Pos, tok)
	}
	return nil
}

// printTree writes one line per node, indented by depth.
func printTree(w io.Writer, n ast.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	switch v := n.(type) {
	case nil:
		fmt.Fprintf(w, "%s(empty)\n", pad)
	case *ast.Scalar:
		fmt.Fprintf(w, "%s%s %q [%s] %s\n", pad, v.Kind, v.Text, v.Style, v.Position)
	case *ast.Null:
		fmt.Fprintf(w, "%snull %s\n", pad, v.Position)
	case *ast.Sequence:
		fmt.Fprintf(w, "%ssequence [%s] %s\n", pad, v.Style, v.Position)
		for _, item := range v.Items {
			printTree(w, item, depth+1)
		}
	case *ast.Mapping:
		fmt.Fprintf(w, "%smapping [%s] %s\n", pad, v.Style, v.Position)
		for _, p := range v.Pairs {
			fmt.Fprintf(w, "%s  key:\n", pad)
			printTree(w, p.Key, depth+2)
			fmt.Fprintf(w, "%s  value:\n", pad)
			printTree(w, p.Value, depth+2)
		}
	case *ast.Anchor:
		fmt.Fprintf(w, "%sanchor &%s %s\n", pad, v.Name, v.Position)
		printTree(w, v.Node, depth+1)
	case *ast.Alias:
		fmt.Fprintf(w, "%salias *%s %s\n", pad, v.Name, v.Position)
	case *ast.Tagged:
		fmt.Fprintf(w, "%stag %s %s\n", pad, v.Shorthand(), v.Position)
		printTree(w, v.Node, depth+1)
	}
}
