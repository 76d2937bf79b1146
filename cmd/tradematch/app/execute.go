package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tradematch",
		Short:   "Trade record reconciliation CLI",
		Version: a.version,
		Long: `tradematch reconciles regulator trade state reports against internal
trade extracts. For each business context (regime and asset class) it derives
matching keys, removes duplicate records, matches records key pair by key pair
and writes every record with its match outcome.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "stages", Title: "Stage Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is ./.tradematch.yaml or $HOME/.tradematch.yaml)")
	flags.StringVar(&a.config.ProfilesFile, "profiles", a.config.ProfilesFile, "business context file (default is the embedded profiles)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.IntVar(&a.config.ChunkSize, "chunk-size", a.config.ChunkSize, "records per processing window")
	flags.StringVar(&a.config.SpillDir, "spill-dir", a.config.SpillDir, "group deduplication identities in SQLite files under this directory")
	flags.StringVar(&a.config.MetricsFile, "metrics-file", a.config.MetricsFile, "write Prometheus metrics to this textfile on exit")

	rootCmd.SetVersionTemplate("tradematch {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand runs before every command. A --config file is read here,
// after flag parsing; values from explicit flags still win.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if flags.Changed("config") {
		loaded, err := LoadConfigFile(a.config.ConfigFile)
		if err != nil {
			return err
		}
		a.mergeConfig(cmd, loaded)
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// mergeConfig copies values from loaded for every flag the user did not set.
func (a *App) mergeConfig(cmd *cobra.Command, loaded *Config) {
	flags := cmd.Flags()
	keep := func(name string) bool { return flags.Changed(name) }

	if !keep("profiles") {
		a.config.ProfilesFile = loaded.ProfilesFile
	}
	if !keep("format") {
		a.config.Format = loaded.Format
	}
	if !keep("log-level") {
		a.config.LogLevel = loaded.LogLevel
	}
	if !keep("chunk-size") {
		a.config.ChunkSize = loaded.ChunkSize
	}
	if !keep("spill-dir") {
		a.config.SpillDir = loaded.SpillDir
	}
	if !keep("metrics-file") {
		a.config.MetricsFile = loaded.MetricsFile
	}
	a.config.Parallel = loaded.Parallel
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag defined by this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag defined by this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
