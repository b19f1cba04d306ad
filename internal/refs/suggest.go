// SPDX-License-Identifier: AGPL-3.0-or-later

package refs

import (
	"sort"
	"strings"

	"github.com/odoosync/odoosync/internal/component"
)

// Suggestion score tiers. Exact matches rank above substring containment.
const (
	scoreExact     = 100
	scoreSubstring = 50
	scoreContains  = 25
)

// Suggest returns up to max components that plausibly match an unresolved
// reference, best first. It is advisory output for a human fixing a mapping
// document and is never used for automatic resolution. Component type is a
// hard filter; ties keep pool order.
func Suggest(ref string, pool []*component.Component, max int) []*component.Component {
	parsed := Parse(Normalize(ref))
	name := strings.ToLower(parsed.Name)

	type scored struct {
		comp  *component.Component
		score int
	}
	var matches []scored

	for _, c := range pool {
		if string(c.Type) != parsed.Type {
			continue
		}

		compName := strings.ToLower(c.Name)
		display := strings.ToLower(c.DisplayName)

		var score int
		switch {
		case name == compName || (display != "" && name == display):
			score = scoreExact
		case strings.Contains(compName, name) || (display != "" && strings.Contains(display, name)):
			score = scoreSubstring
		case strings.Contains(name, compName) || (display != "" && strings.Contains(name, display)):
			score = scoreContains
		}

		if score > 0 {
			matches = append(matches, scored{comp: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if len(matches) > max {
		matches = matches[:max]
	}
	out := make([]*component.Component, len(matches))
	for i, m := range matches {
		out[i] = m.comp
	}
	return out
}
