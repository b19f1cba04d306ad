// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odoosync/odoosync/cmd/odoosync/internal/clierr"
	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/estimate"
	"github.com/odoosync/odoosync/internal/feature"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/refs"
	"github.com/odoosync/odoosync/internal/report"
	"github.com/odoosync/odoosync/internal/ui"
)

// NewMapCommand groups the mapping-document subcommands.
func NewMapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Manage the feature/user-story mapping document",
	}

	cmd.AddCommand(newMapValidateCommand())
	cmd.AddCommand(newMapGenerateCommand())

	return cmd
}

// newMapValidateCommand checks document structure and, when extraction
// output is present, verifies that every component reference resolves.
func newMapValidateCommand() *cobra.Command {
	var maxSuggestions int

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the mapping document and its component references",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, root, err := loadProjectConfig(cmd)
			if err != nil {
				return clierr.Wrap(2, "loading configuration", err)
			}

			doc, err := mapping.Load(mapPath(root))
			if err != nil {
				return clierr.Wrap(1, "loading mapping document", err)
			}

			warnings := mapping.Validate(doc)
			for _, w := range warnings {
				ui.Warn("%s", w)
			}

			pool, err := component.LoadExtractionDir(extractionDir(root))
			if err != nil {
				return clierr.Wrap(1, "reading extraction output", err)
			}

			unresolved := 0
			if len(pool) > 0 {
				for _, name := range doc.FeatureNames() {
					for _, story := range doc.Features[name].Stories {
						for _, ref := range story.Refs {
							if refs.Resolve(ref, pool) != nil {
								continue
							}
							unresolved++
							ui.Error("unresolved reference %q in %s / %s", ref, name, story.Name)
							for _, s := range refs.Suggest(ref, pool, maxSuggestions) {
								ui.Info("  did you mean %s?", s.Ref())
							}
						}
					}
				}
			} else {
				ui.Warn("no extraction output found; reference resolution skipped")
			}

			if len(warnings) == 0 && unresolved == 0 {
				ui.Success("mapping document is valid")
				return nil
			}
			return clierr.New(1, fmt.Sprintf("%d warning(s), %d unresolved reference(s)", len(warnings), unresolved))
		},
	}

	cmd.Flags().IntVar(&maxSuggestions, "suggestions", 3, "max fuzzy suggestions per unresolved reference")

	return cmd
}

// newMapGenerateCommand writes a skeleton mapping document derived from the
// detected features and the default group-by-type stories.
func newMapGenerateCommand() *cobra.Command {
	var execute bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a skeleton mapping document from extracted components",
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

			detector, estimator, err := loadGrouping(root)
			if err != nil {
				return clierr.Wrap(1, "loading grouping configuration", err)
			}

			stories := make(map[string][]mapping.UserStory)
			for _, f := range detector.Detect(pool) {
				stories[f.Name] = estimator.GroupByType(f.Name, f.Components)
			}

			data, err := mapping.GenerateSkeleton(stories)
			if err != nil {
				return clierr.Wrap(1, "generating mapping document", err)
			}

			if !execute {
				ui.Warn("dry-run: pass --execute to write %s", mapPath(root))
				return nil
			}
			if err := report.WriteAtomic(mapPath(root), data); err != nil {
				return clierr.Wrap(1, "writing mapping document", err)
			}
			ui.Success("wrote %s (%d feature(s))", mapPath(root), len(stories))
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "write the mapping document")

	return cmd
}

func mapPath(root string) string {
	return filepath.Join(root, ".odoo-sync", "feature_user_story_map.toml")
}

func extractionDir(root string) string {
	return filepath.Join(root, ".odoo-sync", "extraction")
}

// loadGrouping loads the feature detector and estimator shared by the map,
// estimate, sync, and report commands.
func loadGrouping(root string) (*feature.Detector, *estimate.Estimator, error) {
	fm, err := feature.LoadMapping(filepath.Join(root, ".odoo-sync", "feature-mapping.yaml"))
	if err != nil {
		// Feature mapping is optional; fall back to group-by-model.
		fm = feature.DefaultMapping()
	}

	metrics, err := estimate.LoadMetrics(filepath.Join(root, ".odoo-sync", "time_metrics.json"))
	if err != nil {
		return nil, nil, err
	}

	return feature.NewDetector(fm), estimate.NewEstimator(metrics), nil
}
