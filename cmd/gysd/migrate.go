// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emales/gysd/internal/config"
	"github.com/emales/gysd/internal/store"
)

// migrateConfig holds flags for the migrate subcommand.
type migrateConfig struct {
	down  bool
	steps int
}

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply pending schema migrations to the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&cfg.steps, "steps", 0, "apply n migrations (negative rolls back)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string (overrides config)")

	return cmd
}

func runMigrate(cmd *cobra.Command, mcfg *migrateConfig) error {
	if mcfg.down && mcfg.steps != 0 {
		return oops.Code("INVALID_FLAGS").Errorf("--down and --steps are mutually exclusive")
	}

	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // close error is secondary to migration outcome
	}()

	switch {
	case mcfg.down:
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
	case mcfg.steps != 0:
		cmd.Printf("Applying %d migration step(s)...\n", mcfg.steps)
		if err := migrator.Steps(mcfg.steps); err != nil {
			return err
		}
	default:
		cmd.Println("Applying pending migrations...")
		if err := migrator.Up(); err != nil {
			return err
		}
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Done. Schema version: %d (dirty: %v)\n", version, dirty)
	return nil
}
