package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"budget/internal/core"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Manage transactions",
		Long:    `List, add and delete income, expense and transfer records.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var txType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := core.TransactionType(strings.TrimSpace(txType))
			if t != "" && !t.IsValid() {
				return fmt.Errorf("invalid transaction type %q: must be expense, income or transfer", txType)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			var txs []core.Transaction
			if t == "" {
				txs, err = a.transactions.ListAll(ctx)
			} else {
				txs, err = a.transactions.ListByType(ctx, t)
			}
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions found.")
				return nil
			}
			printTransactions(cmd.OutOrStdout(), txs)
			return nil
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "only list one type (expense, income, transfer)")
	return cmd
}

func printTransactions(out io.Writer, txs []core.Transaction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", "Date", "Type", "Amount", "Name", "ID")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			core.FormatDate(t.Date.String()),
			t.Type,
			core.FormatDecimal(t.Amount, t.Currency),
			t.Name,
			t.ID)
	}
}

func addTransactionCmd() *cobra.Command {
	var (
		in     core.TransactionInput
		amount string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Amount = nil
			if d, err := decimal.NewFromString(strings.TrimSpace(amount)); err == nil {
				in.Amount = &d
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.transactions.Create(ctx, in)
			if err != nil {
				return userError(err, "transaction")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s %s (%s)\n",
				t.Type, core.FormatDecimal(t.Amount, t.Currency), t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "transaction name")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, for example 12.50")
	cmd.Flags().StringVar(&in.Currency, "currency", string(core.EUR), "currency code (EUR, USD)")
	cmd.Flags().StringVar(&in.Date, "date", time.Now().Format(core.DateLayout), "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Type, "type", string(core.Expense), "expense, income or transfer")
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&in.Note, "note", "", "optional note")
	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.transactions.Delete(ctx, args[0])
			if err != nil {
				return userError(err, "transaction")
			}
			if !deleted {
				return fmt.Errorf("transaction not found")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted transaction %s\n", args[0])
			return nil
		},
	}
}
