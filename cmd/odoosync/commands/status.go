// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/odoo"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewStatusCommand tests instance connections and shows extraction state.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Test instance connections and summarize extraction state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, root, err := loadProjectConfig(cmd)
			if err != nil {
				return clierr.Wrap(2, "loading configuration", err)
			}

			names := make([]string, 0, len(cfg.Instances))
			for name := range cfg.Instances {
				names = append(names, name)
			}
			sort.Strings(names)

			ok := true
			for _, name := range names {
				inst := cfg.Instances[name]
				info, err := odoo.NewClientFromConfig(inst).TestConnection(cmd.Context())
				if err != nil {
					ui.Error("%s: %v", name, err)
					ok = false
					continue
				}
				mode := "read/write"
				if info.ReadOnly {
					mode = "read-only"
				}
				ui.Success("%s: %s (Odoo %s, user %s, %s)", name, info.URL, info.ServerVersion, info.UserLogin, mode)
			}

			pool, err := component.LoadExtractionDir(filepath.Join(root, ".odoo-sync", "extraction"))
			if err != nil {
				return clierr.Wrap(1, "reading extraction output", err)
			}
			if len(pool) == 0 {
				ui.Warn("no extraction output found; run 'odoosync extract --execute'")
			} else {
				counts := make(map[component.Type]int)
				for _, c := range pool {
					counts[c.Type]++
				}
				ui.Separator()
				ui.Info("extracted components: %d total", len(pool))
				for _, t := range []component.Type{
					component.TypeField, component.TypeView, component.TypeServerAction,
					component.TypeAutomation, component.TypeReport,
				} {
					if counts[t] > 0 {
						ui.Info("  %-14s %d", t.Label(), counts[t])
					}
				}
			}

			if !ok {
				return clierr.New(1, "one or more instance connections failed")
			}
			return nil
		},
	}

	return cmd
}
