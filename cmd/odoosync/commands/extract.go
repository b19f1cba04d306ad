// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/extract"
	"github.com/odoosync/odoosync/internal/odoo"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewExtractCommand extracts customization records from the implementation
// instance into per-type JSON files.
func NewExtractCommand() *cobra.Command {
	var execute bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract Studio customizations from the implementation instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, root, err := loadProjectConfig(cmd)
			if err != nil {
				return clierr.Wrap(2, "loading configuration", err)
			}
			inst, err := cfg.Implementation()
			if err != nil {
				return clierr.Wrap(2, "loading configuration", err)
			}

			client := odoo.NewClientFromConfig(inst)
			outputDir := filepath.Join(root, ".odoo-sync", "extraction")
			runner := extract.NewRunner(client, cfg.ExtractionFilters, outputDir, !execute)

			results, err := runner.RunAll(cmd.Context())
			for _, res := range results {
				if res.DryRun {
					ui.Info("%s: %d record(s) (dry-run, not written)", res.Name, res.Count)
				} else {
					ui.Success("%s: %d record(s) -> %s", res.Name, res.Count, res.OutputFile)
				}
			}
			if err != nil {
				return clierr.Wrap(1, "extraction incomplete", err)
			}
			if !execute {
				ui.Warn("dry-run: pass --execute to write extraction files")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "write extraction output files")

	return cmd
}
