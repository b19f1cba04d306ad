// SPDX-License-Identifier: AGPL-3.0-or-later

package mapping

import (
	"fmt"
	"math"

	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/refs"
)

// UserStory is a group of components forming one unit of delivery.
type UserStory struct {
	Title          string
	Description    string
	Components     []*component.Component
	EstimatedHours float64
}

// Estimator supplies the per-component effort estimate in hours.
type Estimator interface {
	EstimateComponent(c *component.Component) float64
}

// FallbackGrouping produces user stories for a feature that is absent from
// the mapping document or deprecated in it.
type FallbackGrouping func(featureName string, pool []*component.Component) []UserStory

// BuildUserStories resolves the declared stories of a feature against a
// component pool.
//
// Components are claimed first-come-first-served: once a story resolves a
// component, later stories in the same feature never re-claim it. Stories
// that resolve nothing are dropped. Any component left unclaimed lands in a
// final "Other Components" story, so every component of the pool appears in
// exactly one story.
func BuildUserStories(
	featureName string,
	doc *Document,
	pool []*component.Component,
	est Estimator,
	fallback FallbackGrouping,
) []UserStory {
	f := doc.Features[featureName]
	if f == nil || f.Deprecated || len(f.Stories) == 0 {
		return fallback(featureName, pool)
	}

	claimed := make(map[int]bool)
	var stories []UserStory

	for _, declared := range f.Stories {
		var matched []*component.Component
		for _, ref := range declared.Refs {
			c := refs.Resolve(ref, pool)
			if c == nil || claimed[c.ID] {
				continue
			}
			claimed[c.ID] = true
			matched = append(matched, c)
		}
		if len(matched) == 0 {
			continue
		}

		stories = append(stories, UserStory{
			Title:          declared.Description,
			Description:    fmt.Sprintf("Implement %d component(s)", len(matched)),
			Components:     matched,
			EstimatedHours: sumHours(matched, est),
		})
	}

	var unclaimed []*component.Component
	for _, c := range pool {
		if !claimed[c.ID] {
			unclaimed = append(unclaimed, c)
		}
	}
	if len(unclaimed) > 0 {
		stories = append(stories, UserStory{
			Title:          "Other Components",
			Description:    fmt.Sprintf("Implement %d additional component(s)", len(unclaimed)),
			Components:     unclaimed,
			EstimatedHours: sumHours(unclaimed, est),
		})
	}

	return stories
}

func sumHours(comps []*component.Component, est Estimator) float64 {
	var total float64
	for _, c := range comps {
		total += est.EstimateComponent(c)
	}
	return math.Round(total*10) / 10
}
