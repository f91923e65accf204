package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/shapestone/yamlref/pkg/semantic"
	"github.com/shapestone/yamlref/pkg/yaml"
)

func newResolveCommand(a *app) *cobra.Command {
	var stats, dumpMetrics bool
	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Resolve anchors, aliases, merge keys and tags",
		Long: `Resolve a YAML stream and print the resolved documents.

Documents that fail to resolve are left out of the output and their errors
are reported. Unused anchors are logged as warnings.

Examples:
  # Resolve a file
  yamlref resolve config.yaml

  # Resolve from standard input with statistics
  cat config.yaml | yamlref resolve --stats

  # Dump the analyzer metrics after resolving
  yamlref resolve --metrics config.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, text, err := a.readInput(args)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			opts := a.options()
			if dumpMetrics {
				opts = append(opts, yaml.WithRegisterer(reg))
			}

			res, resolveErr := yaml.LoadResolved(text, opts...)
			if res == nil {
				return fmt.Errorf("%s: %w", name, resolveErr)
			}
			for _, w := range res.Warnings {
				level.Warn(a.logger).Log("msg", "resolve warning", "file", name, "document", w.Document, "warning", w.String())
			}

			out, err := yaml.ToText(res.Stream())
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)

			if stats {
				printStatistics(a.out, &res.Statistics)
			}
			if dumpMetrics {
				if err := writeMetrics(a.out, reg); err != nil {
					return err
				}
			}
			if resolveErr != nil {
				return fmt.Errorf("%s: %w", name, resolveErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "print resolution statistics")
	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print the analyzer metrics in the Prometheus text format")
	return cmd
}

func printStatistics(w io.Writer, s *semantic.Statistics) {
	fmt.Fprintf(w, "# run %s\n", s.RunID)
	fmt.Fprintf(w, "# documents: %s (%s failed)\n", humanize.Comma(int64(s.Documents)), humanize.Comma(int64(s.FailedDocuments)))
	fmt.Fprintf(w, "# anchors: %s (%s unused)\n", humanize.Comma(int64(s.Anchors)), humanize.Comma(int64(s.UnusedAnchors)))
	fmt.Fprintf(w, "# aliases: %s resolved, %s expansions, %s merged keys\n",
		humanize.Comma(int64(s.AliasesResolved)), humanize.Comma(int64(s.Expansions)), humanize.Comma(int64(s.MergedKeys)))
	fmt.Fprintf(w, "# cycles: %s\n", humanize.Comma(int64(s.Cycles)))
	fmt.Fprintf(w, "# cache: %s hits, %s misses, %s evictions\n",
		humanize.Comma(int64(s.Cache.Hits)), humanize.Comma(int64(s.Cache.Misses)), humanize.Comma(int64(s.Cache.Evictions)))
	fmt.Fprintf(w, "# pool: %s slots, %s live, %s reused, %.0f%% fragmented\n",
		humanize.Comma(int64(s.Pool.Slots)), humanize.Comma(int64(s.Pool.Live)), humanize.Comma(int64(s.Pool.Reuses)), 100*s.Pool.Fragmentation)

	for _, p := range semantic.Phases {
		fmt.Fprintf(w, "# phase %s: %s\n", p, s.PhaseDurations[p].Round(time.Microsecond))
	}
	fmt.Fprintf(w, "# took %s\n", s.Duration.Round(time.Microsecond))
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
