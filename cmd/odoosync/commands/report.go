// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/report"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewReportCommand writes the implementation overview report.
func NewReportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the implementation overview report",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, root, err := loadProjectConfig(cmd)
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

			var features []report.FeatureBreakdown
			for _, f := range detector.Detect(pool) {
				features = append(features, report.FeatureBreakdown{
					Name:        f.Name,
					Description: f.Description,
					Stories: mapping.BuildUserStories(
						f.Name, doc, f.Components, estimator, estimator.GroupByType),
				})
			}

			var content string
			switch format {
			case "markdown", "md":
				content = report.Overview(features)
			case "html":
				content = report.OverviewHTML(features)
			default:
				return clierr.New(2, fmt.Sprintf("unknown report format %q (markdown or html)", format))
			}

			path := output
			if path == "" {
				name := "implementation_overview.md"
				if format == "html" {
					name = "implementation_overview.html"
				}
				path = filepath.Join(root, ".odoo-sync", name)
			}
			if err := report.WriteAtomic(path, []byte(content)); err != nil {
				return clierr.Wrap(1, "writing report", err)
			}
			ui.Success("wrote %s (%d feature(s))", path, len(features))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "report format: markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults into .odoo-sync/)")

	return cmd
}
