package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxpilot-ai/taxpilot/internal/cli"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}

	cmd.Flags().Bool("seed", false, "insert demo review items after migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		if err := store.SeedDemoData(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		fmt.Println(cli.FormatSuccess("Migrations applied and demo data seeded."))
		return nil
	}

	fmt.Println(cli.FormatSuccess("Migrations applied."))
	return nil
}
