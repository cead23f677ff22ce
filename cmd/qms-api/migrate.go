package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmaanit26/Query-Management-System/pkg/config"
	"github.com/salmaanit26/Query-Management-System/pkg/database"
	"github.com/salmaanit26/Query-Management-System/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(newMigrateDirectionCmd(database.MigrateUp, "Apply all pending migrations"))
	cmd.AddCommand(newMigrateDirectionCmd(database.MigrateDown, "Roll back every migration"))
	return cmd
}

func newMigrateDirectionCmd(direction database.MigrateDirection, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, direction)
		},
	}
}

func runMigrate(cmd *cobra.Command, direction database.MigrateDirection) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := database.Migrate(cfg.Database, direction, logr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrations %s complete\n", direction)
	return nil
}
