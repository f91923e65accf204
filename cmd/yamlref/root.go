package main

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shapestone/yamlref/pkg/semantic"
	"github.com/shapestone/yamlref/pkg/yaml"
)

// app holds the state shared by the subcommands.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logLevel   string
	configFile string
	cfg        semantic.Config
	logger     log.Logger
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, cfg: semantic.DefaultConfig()}

	root := &cobra.Command{
		Use:   "yamlref",
		Short: "Parse and resolve YAML 1.2 streams",
		Long: `yamlref parses YAML 1.2 streams and resolves their anchors, aliases,
merge keys and tags.

Resolution is bounded: alias expansions per document, alias nesting and the
depth of the resolved tree all have limits, set with the --resolve.* flags or
a configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log.level", "info", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error]")
	flags.StringVarP(&a.configFile, "config", "c", "", "Analyzer configuration file. Flags set on the command line take precedence.")
	a.cfg.RegisterFlags(flags)

	root.AddCommand(
		newParseCommand(a),
		newResolveCommand(a),
		newEmitCommand(a),
		newValidateCommand(a),
		newWatchCommand(a),
	)
	return root
}

// setup builds the logger and the final analyzer configuration.
func (a *app) setup(flags *pflag.FlagSet) error {
	logger, err := newLogger(a.errOut, a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.configFile != "" {
		file, err := yaml.LoadConfig(a.configFile)
		if err != nil {
			return err
		}
		applyConfigFile(flags, file, &a.cfg)
		level.Debug(a.logger).Log("msg", "loaded configuration", "path", a.configFile)
	}
	return errors.Wrap(a.cfg.Validate(), "invalid configuration")
}

// applyConfigFile copies the settings of file into cfg, except the ones set
// on the command line.
func applyConfigFile(flags *pflag.FlagSet, file semantic.Config, cfg *semantic.Config) {
	settings := []struct {
		flag  string
		apply func()
	}{
		{"resolve.max-expansion-depth", func() { cfg.MaxExpansionDepth = file.MaxExpansionDepth }},
		{"resolve.max-total-expansions", func() { cfg.MaxTotalExpansions = file.MaxTotalExpansions }},
		{"resolve.max-recursion-depth", func() { cfg.MaxRecursionDepth = file.MaxRecursionDepth }},
		{"resolve.cache-size", func() { cfg.CacheSize = file.CacheSize }},
		{"resolve.cache-max-age", func() { cfg.CacheMaxAge = file.CacheMaxAge }},
		{"resolve.cache-policy", func() { cfg.CachePolicy = file.CachePolicy }},
		{"resolve.permissive-tags", func() { cfg.PermissiveTags = file.PermissiveTags }},
		{"resolve.merge-keys", func() { cfg.MergeKeys = file.MergeKeys }},
		{"resolve.compaction-threshold", func() { cfg.CompactionThreshold = file.CompactionThreshold }},
		{"resolve.tag-handle", func() { cfg.TagHandles = file.TagHandles }},
	}
	for _, s := range settings {
		if !flags.Changed(s.flag) {
			s.apply()
		}
	}
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, errors.Errorf("unrecognized log level %q", lvl)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

// readInput reads the file named by args, or standard input when there is
// none or it is "-".
func (a *app) readInput(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.in)
		return "<stdin>", string(data), errors.Wrap(err, "read standard input")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return args[0], "", errors.Wrapf(err, "read %s", args[0])
	}
	return args[0], string(data), nil
}

func (a *app) options() []yaml.Option {
	return []yaml.Option{yaml.WithConfig(a.cfg), yaml.WithLogger(a.logger)}
}
