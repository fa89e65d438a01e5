// Package cli implements the cobra commands of the treeport binary.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treeport/convert"
	"github.com/YuminosukeSato/treeport/pkg/errors"
	"github.com/YuminosukeSato/treeport/pkg/log"
)

// Build information, set by main from ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	LogFormatCloud   = "cloud"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the treeport command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "treeport",
		Short: "Convert XGBoost tree dumps into portable JSON models",
		Long: `treeport turns the text dump of a gradient boosted tree ensemble into a
self-describing JSON document that a browser or edge runtime can evaluate
without the training library.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", LogFormatConsole, "log format: console, json, cloud")

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newInspectCommand(opts))
	return rootCmd
}

// Execute runs rootCmd and returns the process exit status.
func Execute(rootCmd *cobra.Command) int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		if errors.IsUnsupportedSourceFormat(err) {
			return 3
		}
		var validation *errors.ValidationError
		if errors.As(err, &validation) {
			return 2
		}
		return 1
	}
	return 0
}

// loadConfig reads --config when given and applies the global flags.
func (o *globalOptions) loadConfig() (convert.Config, error) {
	cfg := convert.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = convert.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// setupLogger installs the global log provider for one command run and
// returns the logger of the convert component.
func (o *globalOptions) setupLogger(cfg convert.Config, w io.Writer) (log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.NewValidationError("log_level", "must be debug, info, warn or error", cfg.LogLevel)
	}

	switch o.logFormat {
	case LogFormatConsole, LogFormatJSON:
		log.SetProvider(log.NewZerologProvider(w, level, o.logFormat == LogFormatConsole))
	case LogFormatCloud:
		if err := log.SetupLogger(level.String(), w); err != nil {
			return nil, err
		}
		provider := log.NewSlogProvider(slog.Default())
		provider.SetLevel(level)
		log.SetProvider(provider)
	default:
		return nil, errors.NewValidationError("log_format", "must be console, json or cloud", o.logFormat)
	}
	return log.GetLoggerWithName("convert"), nil
}
