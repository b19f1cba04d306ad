// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/complexity"
	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewEstimateCommand prints per-feature effort estimates, optionally
// re-grading component complexity from module source files.
func NewEstimateCommand() *cobra.Command {
	var sourceDir string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate implementation effort for extracted components",
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

			if sourceDir != "" {
				regraded, err := regradeFromSource(pool, sourceDir)
				if err != nil {
					return clierr.Wrap(1, "analyzing source complexity", err)
				}
				if regraded > 0 {
					ui.Info("re-graded %d component(s) from source analysis", regraded)
				}
			}

			detector, estimator, err := loadGrouping(root)
			if err != nil {
				return clierr.Wrap(1, "loading grouping configuration", err)
			}

			ui.Title("Effort estimate")
			ui.Separator()
			var total float64
			for _, f := range detector.Detect(pool) {
				hours := estimator.EstimateAll(f.Components)
				total += hours
				ui.Info("%-40s %3d component(s)  %6.1fh", f.Name, len(f.Components), hours)
			}
			ui.Separator()
			ui.Info("%-40s %6.1fh", "Total", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Odoo module source directory for complexity re-grading")

	return cmd
}

// regradeFromSource replaces the extraction-time complexity label of
// components whose source file is present with the analyzer's grade.
func regradeFromSource(pool []*component.Component, sourceDir string) (int, error) {
	files, err := complexity.ScanSourceDir(sourceDir, complexity.ScanOptions{
		ExcludeDirs: complexity.DefaultExcludeDirs(),
	})
	if err != nil {
		return 0, err
	}
	byPath := make(map[string]bool, len(files))
	for _, f := range files {
		byPath[f] = true
	}

	analyzer := complexity.New(complexity.DefaultThresholds())
	var regraded int
	for _, c := range pool {
		if c.FilePath == "" {
			continue
		}
		path := filepath.Join(sourceDir, c.FilePath)
		if !byPath[path] {
			continue
		}
		res, err := analyzer.AnalyzeFiles([]string{path})
		if err != nil {
			continue
		}
		if res.Label != c.Complexity {
			c.Complexity = res.Label
			regraded++
		}
	}
	return regraded, nil
}
