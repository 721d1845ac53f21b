package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/config"
	"github.com/envelo-dev/envelo/internal/ledger"
	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var name string
	var currency string
	var noSeed bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a data directory with a new budget",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.resolveDataDir()
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, opts, absDir, name, currency, !noSeed)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "budget name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "USD", "budget currency code")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip the starter category groups")

	return cmd
}

func runInit(cmd *cobra.Command, opts *rootOptions, dir, name, currency string, seed bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	cfg := config.Default(dir)
	if currency != "" {
		cfg.Budget.Currency = currency
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	svc := ledger.NewService(st)
	budget, err := svc.CreateBudget(ctx, name, cfg.Budget.Currency)
	if err != nil {
		return err
	}
	if seed {
		if err := svc.SeedDefaultCategories(ctx, budget.ID, model.CurrentMonth()); err != nil {
			return err
		}
	}

	cfg.Budget.DefaultID = budget.ID
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if opts.quiet {
		fmt.Println(budget.ID)
		return nil
	}
	fmt.Printf("Initialized budget %q (%s) at %s\n", budget.Name, budget.ID, dir)
	return nil
}
