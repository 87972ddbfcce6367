package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, rename and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			cats, err := a.categories.ListActive(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, "No categories found. Use 'budget categories add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\n", "ID", "Name", "Color")
			fmt.Fprintf(w, "%s\t%s\t%s\n", strings.Repeat("-", 36), strings.Repeat("-", 20), strings.Repeat("-", 7))
			for _, c := range cats {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Color)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Long:  `Add a category. Its color is taken from the palette by the number of active categories.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.categories.Create(ctx, args[0])
			if err != nil {
				return userError(err, "category")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created category %q (%s) with color %s\n", c.Name, c.ID, c.Color)
			return nil
		},
	}
}

func renameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.categories.Update(ctx, args[0], args[1])
			if err != nil {
				return userError(err, "category")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed category %s to %q\n", c.ID, c.Name)
			return nil
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft delete a category",
		Long:  `Mark a category deleted. Transactions filed under it keep their reference.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.categories.SoftDelete(ctx, args[0])
			if err != nil {
				return userError(err, "category")
			}
			if !deleted {
				return fmt.Errorf("category not found")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted category %s\n", args[0])
			return nil
		},
	}
}
