// SPDX-License-Identifier: AGPL-3.0-or-later

package mapping

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// GenerateSkeleton renders a starter mapping document from already-grouped
// user stories (feature name -> stories). Users edit the result by hand to
// regroup components; statistics are recomputed on every generation.
func GenerateSkeleton(stories map[string][]UserStory) ([]byte, error) {
	type tomlStory struct {
		Description string   `toml:"description"`
		Components  []string `toml:"components"`
	}
	type tomlFeature struct {
		Description string               `toml:"description"`
		UserStories map[string]tomlStory `toml:"user_stories"`
	}

	doc := struct {
		Features   map[string]tomlFeature `toml:"features"`
		Statistics map[string]any         `toml:"statistics"`
	}{
		Features: make(map[string]tomlFeature, len(stories)),
	}

	var featureCount, storyCount, componentCount int
	var totalHours float64

	names := make([]string, 0, len(stories))
	for name := range stories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ft := tomlFeature{
			Description: fmt.Sprintf("Auto-generated grouping for %s", name),
			UserStories: make(map[string]tomlStory),
		}
		for _, s := range stories[name] {
			refs := make([]string, 0, len(s.Components))
			for _, c := range s.Components {
				refs = append(refs, c.Ref())
			}
			ft.UserStories[s.Title] = tomlStory{Description: s.Description, Components: refs}
			storyCount++
			componentCount += len(s.Components)
			totalHours += s.EstimatedHours
		}
		doc.Features[name] = ft
		featureCount++
	}

	doc.Statistics = map[string]any{
		"features":        featureCount,
		"user_stories":    storyCount,
		"components":      componentCount,
		"estimated_hours": totalHours,
	}

	var buf bytes.Buffer
	buf.WriteString("# feature_user_story_map.toml\n")
	buf.WriteString("# Generated skeleton; edit stories and component references by hand.\n\n")
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding mapping document: %w", err)
	}
	return buf.Bytes(), nil
}
