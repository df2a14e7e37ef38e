// Package cmd implements the mapwatch CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mapwatch/mapwatch"
	"github.com/mapwatch/mapwatch/pkg/logging"
	"github.com/mapwatch/mapwatch/pkg/upload"
)

// Execute builds the root command and runs it with the given context.
func Execute(ctx context.Context, version, commit, date string) error {
	root := NewRootCommand(version, commit, date)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// NewRootCommand creates the root mapwatch command with all subcommands
// attached.
func NewRootCommand(version, commit, date string) *cobra.Command {
	root := &cobra.Command{
		Use:   "mapwatch",
		Short: "MAP price compliance tracking",
		Long: `Mapwatch imports vendor MAP price feeds into a local store and checks
your own price files against them for violations.

Feed sources, column layouts, and per-brand tolerances are configured
through source profiles; see the sources command.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (default $HOME/.mapwatch.yaml)")
	root.PersistentFlags().String("db", "", "path to the product store database")
	root.PersistentFlags().String("profiles", "", "path to a source profiles YAML file")
	root.PersistentFlags().String("proxy", "", "pass-through proxy prefix for feed fetches")
	root.PersistentFlags().Bool("json", false, "machine-readable JSON output")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolP("quiet", "q", false, "errors only")

	root.AddCommand(
		newSourcesCommand(),
		newImportCommand(),
		newCheckCommand(),
		newSummaryCommand(),
	)
	return root
}

// loadConfig resolves the effective configuration for a command invocation:
// file and environment first, then flag overrides.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("profiles") {
		cfg.ProfilesFile, _ = flags.GetString("profiles")
	}
	if flags.Changed("proxy") {
		cfg.ProxyPrefix, _ = flags.GetString("proxy")
	}
	if flags.Changed("json") {
		cfg.JSON, _ = flags.GetBool("json")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("quiet") {
		cfg.Quiet, _ = flags.GetBool("quiet")
	}

	configureLogging(cfg)
	return cfg, nil
}

// configureLogging applies the verbosity flags to the global logger.
func configureLogging(cfg *Config) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		level = parsed
	}
	switch {
	case cfg.Quiet:
		level = zerolog.ErrorLevel
	case cfg.Verbose:
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logging.SetDefault(logging.NewConsole().Level(level))
}

// newInstance constructs the engine from the resolved configuration.
func newInstance(cfg *Config) (mapwatch.Mapwatch, error) {
	opts := []mapwatch.Option{
		mapwatch.WithStorePath(cfg.DBPath),
		mapwatch.WithUploadMapping(upload.Mapping{
			SKU:       cfg.SKUHeader,
			Price:     cfg.PriceHeader,
			SalePrice: cfg.SaleHeader,
		}),
	}
	if cfg.ProfilesFile != "" {
		opts = append(opts, mapwatch.WithProfilesFile(cfg.ProfilesFile))
	}
	if cfg.ProxyPrefix != "" {
		opts = append(opts, mapwatch.WithProxyPrefix(cfg.ProxyPrefix))
	}
	return mapwatch.New(opts...)
}
