// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"strings"

	"github.com/odoosync/odoosync/internal/mapping"
)

// FeatureBreakdown is one feature with its resolved user stories, ready for
// rendering.
type FeatureBreakdown struct {
	Name        string
	Description string
	Stories     []mapping.UserStory
}

// TotalHours sums estimated hours across the feature's stories.
func (f *FeatureBreakdown) TotalHours() float64 {
	var total float64
	for _, s := range f.Stories {
		total += s.EstimatedHours
	}
	return total
}

// ComponentCount counts components across the feature's stories.
func (f *FeatureBreakdown) ComponentCount() int {
	var n int
	for _, s := range f.Stories {
		n += len(s.Components)
	}
	return n
}

// Overview renders the implementation overview as Markdown: a summary table
// of features followed by per-feature story and component detail.
func Overview(features []FeatureBreakdown) string {
	var b strings.Builder

	b.WriteString(mdHeader(1, "Implementation Overview"))

	var totalHours float64
	var totalComponents int
	rows := make([][]string, 0, len(features))
	for i := range features {
		f := &features[i]
		totalHours += f.TotalHours()
		totalComponents += f.ComponentCount()
		rows = append(rows, []string{
			f.Name,
			fmt.Sprintf("%d", len(f.Stories)),
			fmt.Sprintf("%d", f.ComponentCount()),
			formatHours(f.TotalHours()),
		})
	}
	rows = append(rows, []string{"**Total**", "", fmt.Sprintf("%d", totalComponents), formatHours(totalHours)})
	b.WriteString(mdTable([]string{"Feature", "User Stories", "Components", "Estimated"}, rows))
	b.WriteString("\n")

	for i := range features {
		f := &features[i]
		b.WriteString(mdHeader(2, f.Name))
		if f.Description != "" {
			b.WriteString(f.Description + "\n\n")
		}

		for _, story := range f.Stories {
			b.WriteString(mdHeader(3, fmt.Sprintf("%s (%s)", story.Title, formatHours(story.EstimatedHours))))

			storyRows := make([][]string, 0, len(story.Components))
			for _, c := range story.Components {
				storyRows = append(storyRows, []string{
					c.TypeLabel(),
					c.Name,
					c.DisplayName,
					c.Model,
					c.Complexity,
				})
			}
			b.WriteString(mdTable([]string{"Type", "Name", "Display Name", "Model", "Complexity"}, storyRows))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}
