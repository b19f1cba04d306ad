// SPDX-License-Identifier: AGPL-3.0-or-later

package mapping

import "fmt"

// Validate scans the document for structural problems and returns them as
// warnings. Warnings never stop processing: a partially correct document is
// still usable for its valid entries.
func Validate(doc *Document) []string {
	var warnings []string

	for _, name := range doc.order {
		f := doc.Features[name]

		if f.Deprecated {
			warnings = append(warnings, fmt.Sprintf(
				"feature %q is marked as deprecated; consider removing it from the map", name))
			continue
		}

		if len(f.DirectComponents) > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"feature %q declares components directly; components must live under user stories", name))
		}

		if !f.HadStoriesKey {
			warnings = append(warnings, fmt.Sprintf(
				"feature %q has no user_stories entry; add stories or remove the feature", name))
			continue
		}
		if len(f.Stories) == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"feature %q has no user stories defined; add stories or remove the feature", name))
			continue
		}

		for _, story := range f.Stories {
			if len(story.Refs) == 0 {
				warnings = append(warnings, fmt.Sprintf(
					"feature %q user story %q has no components", name, story.Name))
			}
		}
	}

	return warnings
}
