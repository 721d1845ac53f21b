package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/model"
)

func newGroupCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage category groups",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category group",
		Args:  cobra.ExactArgs(1),
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
			g, err := app.Ledger.CreateGroup(cmd.Context(), budgetID, args[0])
			if err != nil {
				return err
			}
			app.record("group.add", "group", g.ID, g.Name)
			return app.printResult(g, g.ID, fmt.Sprintf("Added group %q (%s)", g.Name, g.ID))
		},
	}

	rename := &cobra.Command{
		Use:   "rename <group-id> <name>",
		Short: "Rename a category group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			g, err := app.Ledger.RenameGroup(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			app.record("group.rename", "group", g.ID, g.Name)
			return app.printResult(g, g.ID, fmt.Sprintf("Renamed group %s to %q", g.ID, g.Name))
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List category groups",
		Args:  cobra.NoArgs,
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
			groups, err := app.Store.Groups(cmd.Context(), budgetID)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return app.printResult(groups, "", "")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, g := range groups {
				if opts.quiet {
					fmt.Println(g.ID)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, g.Name, g.SortOrder)
			}
			return w.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a group and its categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			g, err := app.Store.Group(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			// Deleted categories change balances from the earliest month
			// they touched; capture it before the cascade runs.
			from := earliestCategoryMonth(cmd, app, g.BudgetID)
			if err := app.Ledger.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			if _, err := app.refresh(cmd.Context(), g.BudgetID, from); err != nil {
				return err
			}
			app.record("group.delete", "group", args[0], "")
			if !opts.quiet {
				fmt.Printf("Deleted group %s\n", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(add, rename, list, del)
	return cmd
}

func newCategoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var month string
	add := &cobra.Command{
		Use:   "add <group-id> <name>",
		Short: "Add a category to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			var created model.Month
			if month != "" {
				created, err = model.ParseMonth(month)
				if err != nil {
					return err
				}
			}
			c, err := app.Ledger.CreateCategory(cmd.Context(), args[0], args[1], created)
			if err != nil {
				return err
			}
			app.record("category.add", "category", c.ID, c.Name)
			return app.printResult(c, c.ID, fmt.Sprintf("Added category %q (%s), carryover from %s", c.Name, c.ID, c.Created))
		},
	}
	add.Flags().StringVar(&month, "from", "", "first month of the carryover chain (YYYY-MM, default current)")

	rename := &cobra.Command{
		Use:   "rename <category-id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			c, err := app.Ledger.RenameCategory(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			app.record("category.rename", "category", c.ID, c.Name)
			return app.printResult(c, c.ID, fmt.Sprintf("Renamed category %s to %q", c.ID, c.Name))
		},
	}

	del := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category; its transactions become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			c, err := app.Store.Category(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := app.Store.Group(cmd.Context(), c.GroupID)
			if err != nil {
				return err
			}
			if err := app.Ledger.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			if _, err := app.refresh(cmd.Context(), g.BudgetID, c.Created); err != nil {
				return err
			}
			app.record("category.delete", "category", args[0], c.Name)
			if !opts.quiet {
				fmt.Printf("Deleted category %q\n", c.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(add, rename, del)
	return cmd
}

// earliestCategoryMonth returns the earliest created month across the
// budget's categories, falling back to the current month.
func earliestCategoryMonth(cmd *cobra.Command, app *App, budgetID string) model.Month {
	earliest := model.CurrentMonth()
	categories, err := app.Store.Categories(cmd.Context(), budgetID)
	if err != nil {
		return earliest
	}
	for _, c := range categories {
		if c.Created.Before(earliest) {
			earliest = c.Created
		}
	}
	return earliest
}
