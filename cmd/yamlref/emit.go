package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapestone/yamlref/pkg/yaml"
)

func newEmitCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "emit [file]",
		Short: "Render a stream in canonical form",
		Long: `Parse a YAML stream and render it again with two space indentation and
canonical scalars. Anchors, aliases and tags are kept.

With --json every document is resolved and printed as one JSON value per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, text, err := a.readInput(args)
			if err != nil {
				return err
			}
			if asJSON {
				res, err := yaml.LoadResolved(text, a.options()...)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				enc := json.NewEncoder(a.out)
				for _, d := range res.Documents {
					if err := enc.Encode(yaml.NodeToInterface(d.Root)); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
				}
				return nil
			}

			stream, err := yaml.Load(text, a.options()...)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out, err := yaml.ToText(stream)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "resolve and print JSON")
	return cmd
}
