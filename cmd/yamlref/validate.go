package main

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/shapestone/yamlref/pkg/yaml"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check that files parse and resolve",
		Long: `Parse and resolve every file and report its errors. The command fails when
any file has an error.

Examples:
  yamlref validate config.yaml overrides.yaml`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			failed := 0
			for _, file := range args {
				name, text, err := a.readInput([]string{file})
				if err == nil {
					err = yaml.Validate(text, a.options()...)
				}
				if err == nil {
					fmt.Fprintf(a.out, "%s: ok\n", name)
					continue
				}
				failed++
				for _, msg := range errorLines(err) {
					fmt.Fprintf(a.out, "%s: %s\n", name, msg)
				}
				level.Debug(a.logger).Log("msg", "validation failed", "file", name, "err", err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

// errorLines splits an error list into one message per error.
func errorLines(err error) []string {
	if list, ok := err.(*yamlerr.List); ok {
		lines := make([]string, 0, list.Len())
		for _, e := range list.Errors {
			lines = append(lines, e.Error())
		}
		return lines
	}
	return []string{err.Error()}
}
