package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/exchange"
	"github.com/envelo-dev/envelo/internal/importer"
	"github.com/envelo-dev/envelo/internal/model"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the budget as a JSON document (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			budgetID, err := app.budgetID(opts.budget)
			if err != nil {
				return err
			}
			doc, err := exchange.Export(cmd.Context(), app.Store, budgetID, time.Now())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding document: %w", err)
			}
			data = append(data, '\n')

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			if !opts.quiet {
				fmt.Printf("Exported budget %s to %s\n", budgetID, args[0])
			}
			return nil
		},
	}
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a budget document (all-or-nothing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			doc, err := exchange.Parse(data)
			if err != nil {
				return err
			}
			if err := exchange.Import(ctx, app.Store, doc); err != nil {
				return err
			}

			// Warm the cache over the imported range.
			from := model.CurrentMonth()
			for _, c := range doc.Categories {
				if c.Created.Before(from) {
					from = c.Created
				}
			}
			if _, err := app.refresh(ctx, doc.Budget.ID, from); err != nil {
				return err
			}
			app.record("budget.import", "budget", doc.Budget.ID, args[0])
			return app.printResult(doc.Budget, doc.Budget.ID,
				fmt.Sprintf("Imported budget %q (%s)", doc.Budget.Name, doc.Budget.ID))
		},
	}
	return cmd
}

func newImportCSVCommand(opts *rootOptions) *cobra.Command {
	var format string
	var accountID string
	cmd := &cobra.Command{
		Use:   "import-csv <file>",
		Short: "Import bank CSV transactions into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown CSV format %q", format)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening CSV: %w", err)
			}
			defer f.Close()

			rows, err := parser.Parse(f)
			if err != nil {
				return err
			}
			created, earliest, err := importer.Load(ctx, app.Ledger, accountID, rows)
			if err != nil {
				return err
			}

			// One refresh for the whole batch, from its earliest month.
			if len(created) > 0 {
				account, err := app.Store.Account(ctx, accountID)
				if err != nil {
					return err
				}
				if _, err := app.refresh(ctx, account.BudgetID, earliest); err != nil {
					return err
				}
			}
			app.record("txn.import", "account", accountID, fmt.Sprintf("%d rows from %s", len(created), args[0]))
			if opts.jsonOut {
				return app.printResult(created, "", "")
			}
			if !opts.quiet {
				fmt.Printf("Imported %d transactions\n", len(created))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "generic", "CSV format: generic, chase")
	cmd.Flags().StringVar(&accountID, "account", "", "target account id (required)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
