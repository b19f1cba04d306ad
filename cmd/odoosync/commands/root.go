// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Odoosync - Odoosync extracts Studio customizations from an Odoo instance,
groups them into features and user stories, estimates implementation effort,
and mirrors the result as project tasks in a second Odoo instance.

Copyright (C) 2025  The Odoosync Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/internal/config"
)

// NewRootCmd constructs the odoosync root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("ODOOSYNC_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "odoosync",
		Short:         "Odoosync - Odoo customization extraction and project sync",
		Long:          "Odoosync extracts Studio customizations from an Odoo instance, groups them into features and user stories, and mirrors them as project tasks in a second instance.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("project-root", "C", ".", "project root containing the .odoo-sync directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of odoosync",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "odoosync version %s\n", version)
		},
	})

	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewExtractCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewMapCommand())
	cmd.AddCommand(NewEstimateCommand())
	cmd.AddCommand(NewSyncCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}

// loadProjectConfig resolves the project root flag and loads configuration.
func loadProjectConfig(cmd *cobra.Command) (*config.Config, string, error) {
	start, _ := cmd.Flags().GetString("project-root")
	root, err := config.FindProjectRoot(start)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}
