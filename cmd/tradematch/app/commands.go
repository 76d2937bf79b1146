package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tradematch/cmd/tradematch/cmd/prepare"
	"github.com/agentstation/tradematch/cmd/tradematch/cmd/profiles"
	"github.com/agentstation/tradematch/cmd/tradematch/cmd/run"
	"github.com/agentstation/tradematch/internal/appcontext"
)

var _ appcontext.Interface = (*App)(nil)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(profiles.NewCommand(a))

	rootCmd.AddCommand(prepare.NewKeysCommand(a))
	rootCmd.AddCommand(prepare.NewDedupCommand(a))

	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("tradematch %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
