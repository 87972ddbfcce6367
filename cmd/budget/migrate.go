package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the relational schema",
		Long:  `Apply, roll back or inspect schema migrations for the sqlite and postgres backends.`,
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateVersionCmd())

	return cmd
}

// migrationTarget resolves the dialect and driver DSN of the configured
// relational backend.
func migrationTarget() (storage.Dialect, string, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return storage.Dialect{}, "", err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return storage.Dialect{}, "", err
	}
	d, raw, err := bcfg.Relational()
	if err != nil {
		return storage.Dialect{}, "", err
	}
	dsn, err := storage.PrepareDSN(d, raw)
	if err != nil {
		return storage.Dialect{}, "", err
	}
	return d, dsn, nil
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, dsn, err := migrationTarget()
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(d, dsn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s schema is up to date\n", d.Name)
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, dsn, err := migrationTarget()
			if err != nil {
				return err
			}
			if err := storage.RollbackMigrations(d, dsn, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Rolled back %d migration(s)\n", steps)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, dsn, err := migrationTarget()
			if err != nil {
				return err
			}
			v, dirty, err := storage.MigrationVersion(d, dsn)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case v == 0 && !dirty:
				fmt.Fprintln(out, "No migrations applied")
			case dirty:
				fmt.Fprintf(out, "Version %d (dirty)\n", v)
			default:
				fmt.Fprintf(out, "Version %d\n", v)
			}
			return nil
		},
	}
}
