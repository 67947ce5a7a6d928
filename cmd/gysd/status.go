// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emales/gysd/internal/config"
	"github.com/emales/gysd/internal/store"
)

// Status holds the health information reported by the status command.
type Status struct {
	Database      string `json:"database"`
	SchemaVersion uint   `json:"schema_version"`
	SchemaDirty   bool   `json:"schema_dirty"`
	Error         string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// newStatusCmd creates the status subcommand with all flags configured.
func newStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity and schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string (overrides config)")

	return cmd
}

func runStatus(cmd *cobra.Command, scfg *statusConfig) error {
	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return err
	}

	status := queryStatus(cmd.Context(), cfg.Database.URL)

	if scfg.jsonOutput {
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("database:       %s\n", status.Database)
	cmd.Printf("schema version: %d (dirty: %v)\n", status.SchemaVersion, status.SchemaDirty)
	if status.Error != "" {
		cmd.Printf("error:          %s\n", status.Error)
	}
	return nil
}

func queryStatus(ctx context.Context, databaseURL string) Status {
	status := Status{Database: "unreachable"}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := store.Connect(pingCtx, databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer pool.Close()
	status.Database = "ok"

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // status output already captured
	}()

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.SchemaVersion = version
	status.SchemaDirty = dirty
	return status
}
