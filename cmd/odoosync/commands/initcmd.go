// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/config"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewInitCommand scaffolds the .odoo-sync directory with a template
// configuration and the default time metrics table.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a project with template configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := cmd.Flags().GetString("project-root")
			if err != nil {
				return err
			}
			root, err = filepath.Abs(root)
			if err != nil {
				return err
			}

			cfgPath := filepath.Join(root, config.ConfigDirName, "odoo-instances.json")
			if _, err := os.Stat(cfgPath); err == nil {
				return clierr.New(2, "configuration already exists: "+cfgPath)
			}

			path, err := config.Save(templateConfig(), root)
			if err != nil {
				return clierr.Wrap(1, "writing configuration", err)
			}
			ui.Success("wrote %s", path)

			metricsPath := filepath.Join(root, config.ConfigDirName, "time_metrics.json")
			if err := os.WriteFile(metricsPath, []byte(defaultTimeMetrics), 0o644); err != nil {
				return clierr.Wrap(1, "writing time metrics", err)
			}
			ui.Success("wrote %s", metricsPath)

			ui.Info("set ODOO_IMPL_API_KEY and ODOO_DEV_API_KEY in %s", filepath.Join(root, ".env"))
			return nil
		},
	}

	return cmd
}

// templateConfig is the starting configuration. API keys stay out of the
// file and come from the environment at load time.
func templateConfig() *config.Config {
	return &config.Config{
		Instances: map[string]*config.InstanceConfig{
			"implementation": {
				URL:         "https://example.odoo.com",
				Database:    "example-prod",
				Username:    "extract-bot@example.com",
				APIKey:      "${ODOO_IMPL_API_KEY}",
				ReadOnly:    true,
				Description: "customer instance customizations are extracted from",
			},
			"development": {
				URL:         "https://dev.example.odoo.com",
				Database:    "example-dev",
				Username:    "sync-bot@example.com",
				APIKey:      "${ODOO_DEV_API_KEY}",
				Description: "instance project tasks are created in",
			},
		},
		ActiveInstance: "implementation",
		Sync: config.SyncConfig{
			ConflictResolution:  "instance_wins",
			PreserveLoggedTime:  true,
			RequireConfirmation: true,
		},
		ExtractionFilters: config.ExtractionFilters{
			CustomFields: config.Domain{
				{Field: "state", Op: "=", Value: "manual"},
			},
			ServerActions: config.Domain{
				{Field: "usage", Op: "=", Value: "ir_actions_server"},
			},
			Automations: config.Domain{
				{Field: "active", Op: "in", Value: []any{true, false}},
			},
			Views: config.Domain{
				{Field: "name", Op: "like", Value: "Odoo Studio%"},
			},
			Reports: config.Domain{
				{Field: "report_name", Op: "like", Value: "studio%"},
			},
		},
	}
}

const defaultTimeMetrics = `{
  "time_metrics": {
    "field": {
      "simple": {"dev": 0.5, "req": 0.2, "test": 0.3},
      "medium": {"dev": 1.0, "req": 0.3, "test": 0.5},
      "complex": {"dev": 2.0, "req": 0.5, "test": 1.0},
      "very_complex": {"dev": 4.0, "req": 1.0, "test": 2.0}
    },
    "view": {
      "simple": {"dev": 1.0, "req": 0.3, "test": 0.5},
      "medium": {"dev": 2.0, "req": 0.5, "test": 1.0},
      "complex": {"dev": 4.0, "req": 1.0, "test": 2.0},
      "very_complex": {"dev": 8.0, "req": 2.0, "test": 4.0}
    },
    "server_action": {
      "simple": {"dev": 1.0, "req": 0.5, "test": 0.5},
      "medium": {"dev": 3.0, "req": 1.0, "test": 1.5},
      "complex": {"dev": 6.0, "req": 2.0, "test": 3.0},
      "very_complex": {"dev": 12.0, "req": 3.0, "test": 6.0}
    },
    "automation": {
      "simple": {"dev": 1.0, "req": 0.5, "test": 0.5},
      "medium": {"dev": 3.0, "req": 1.0, "test": 1.5},
      "complex": {"dev": 6.0, "req": 2.0, "test": 3.0},
      "very_complex": {"dev": 12.0, "req": 3.0, "test": 6.0}
    },
    "report": {
      "simple": {"dev": 2.0, "req": 0.5, "test": 1.0},
      "medium": {"dev": 4.0, "req": 1.0, "test": 2.0},
      "complex": {"dev": 8.0, "req": 2.0, "test": 4.0},
      "very_complex": {"dev": 16.0, "req": 4.0, "test": 8.0}
    }
  }
}
`
