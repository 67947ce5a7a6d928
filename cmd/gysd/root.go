// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/emales/gysd/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the GYSD CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gysd",
		Short: "GYSD - dashboard backend server",
		Long: `GYSD is the backend for the GYSD dashboard application:
user registration and login over PostgreSQL, cookie-session
authentication, and the JSON API the dashboard consumes.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// resolveConfigFile returns the --config flag value, falling back to the
// XDG config location when the flag is unset.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return xdg.DefaultConfigFile()
}
