// Command budget runs the budget tracker API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/log"
)

var (
	envFile     string
	backendFlag string
	version     = "dev"
	rootCmd     = &cobra.Command{
		Use:   "budget",
		Short: "Personal budget tracker",
		Long: `budget keeps categories and income, expense and transfer records
behind a JSON API, backed by SQLite, PostgreSQL or an in-memory store.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadEnv,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "override DATA_BACKEND (memory, sqlite, postgres)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := cli.SignalContext(context.Background(), log.Default())

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEnv(_ *cobra.Command, _ []string) error {
	if err := cli.LoadEnvFile(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	if backendFlag != "" {
		if err := os.Setenv("DATA_BACKEND", backendFlag); err != nil {
			return err
		}
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "budget %s\n", version)
		},
	}
}
