package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/core"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals per currency",
		Long:  `Show income, expenses, transfers and the resulting balance for each currency.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			sums, err := a.transactions.Summary(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute summary: %w", err)
			}
			if len(sums) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", "Currency", "Income", "Expenses", "Transfers", "Balance", "Count")
			for _, s := range sums {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t\n",
					s.Currency,
					core.FormatDecimal(s.Income, s.Currency),
					core.FormatDecimal(s.Expenses, s.Currency),
					core.FormatDecimal(s.Transfers, s.Currency),
					core.FormatDecimal(s.Balance(), s.Currency),
					s.Count)
			}
			return nil
		},
	}
}
