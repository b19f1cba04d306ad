// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/odoo"
	"github.com/odoosync/odoosync/internal/syncengine"
	"github.com/odoosync/odoosync/internal/task"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewSyncCommand mirrors the mapped user stories as project tasks in the
// development instance.
func NewSyncCommand() *cobra.Command {
	var (
		execute   bool
		projectID int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync features and user stories as project tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, root, err := loadProjectConfig(cmd)
			if err != nil {
				return clierr.Wrap(2, "loading configuration", err)
			}
			if projectID <= 0 {
				return clierr.New(2, "a positive --project-id is required")
			}
			inst, err := cfg.Development()
			if err != nil {
				return clierr.Wrap(2, "loading configuration", err)
			}

			pool, err := component.LoadExtractionDir(extractionDir(root))
			if err != nil {
				return clierr.Wrap(1, "reading extraction output", err)
			}
			if len(pool) == 0 {
				return clierr.New(1, "no extraction output found; run 'odoosync extract --execute' first")
			}

			doc, err := mapping.Load(mapPath(root))
			if err != nil {
				return clierr.Wrap(1, "loading mapping document", err)
			}

			detector, estimator, err := loadGrouping(root)
			if err != nil {
				return clierr.Wrap(1, "loading grouping configuration", err)
			}

			client := odoo.NewClientFromConfig(inst)
			if _, err := client.TestConnection(cmd.Context()); err != nil {
				return clierr.Wrap(1, "connecting to development instance", err)
			}

			manager := task.NewManager(client, projectID, !execute)
			if cfg.Sync.PreserveLoggedTime {
				manager.PreserveLoggedHours(client.TaskLoggedHours)
			}
			engine := syncengine.New(detector, doc, estimator, manager, !execute)

			res, err := engine.Sync(cmd.Context(), pool)
			if err != nil {
				return clierr.Wrap(1, "sync failed", err)
			}
			for _, w := range res.Warnings {
				ui.Warn("%s", w)
			}
			if res.DryRun {
				ui.Warn("dry-run: pass --execute to create and update tasks")
			}
			ui.Success("%s", res.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "create and update tasks in the development instance")
	cmd.Flags().IntVar(&projectID, "project-id", 0, "target project id in the development instance")

	return cmd
}
