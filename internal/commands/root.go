package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "envelo",
		Short:   "Envelope budgeting from the command line",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", "", "data directory (default $ENVELO_DATA_DIR or ~/.envelo)")
	rootCmd.PersistentFlags().StringVar(&opts.budget, "budget", "", "budget id (default from config)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "raw JSON output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only identifiers")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newBudgetCommand(opts))
	rootCmd.AddCommand(newAccountCommand(opts))
	rootCmd.AddCommand(newGroupCommand(opts))
	rootCmd.AddCommand(newCategoryCommand(opts))
	rootCmd.AddCommand(newTxnCommand(opts))
	rootCmd.AddCommand(newTransferCommand(opts))
	rootCmd.AddCommand(newAssignCommand(opts))
	rootCmd.AddCommand(newTargetCommand(opts))
	rootCmd.AddCommand(newMonthCommand(opts))
	rootCmd.AddCommand(newRTACommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newImportCSVCommand(opts))

	return rootCmd
}
