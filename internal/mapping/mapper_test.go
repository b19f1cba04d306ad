// SPDX-License-Identifier: AGPL-3.0-or-later

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odoosync/odoosync/internal/component"
)

// fixedEstimator returns the same hours for every component.
type fixedEstimator struct{ hours float64 }

func (e fixedEstimator) EstimateComponent(*component.Component) float64 { return e.hours }

func poolComponent(id int, typ component.Type, model, name string) *component.Component {
	return &component.Component{ID: id, Name: name, Type: typ, Model: model}
}

func noFallback(t *testing.T) FallbackGrouping {
	return func(string, []*component.Component) []UserStory {
		t.Fatal("fallback must not be used for a mapped feature")
		return nil
	}
}

func TestBuildUserStoriesFirstClaimWins(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Sales"]
description = "d"

[features."Sales".user_stories."First"]
description = "First story"
components = ["field.sale_order.x_studio_total"]

[features."Sales".user_stories."Second"]
description = "Second story"
components = [
  "field.sale_order.x_studio_total",
  "field.sale_order.x_studio_margin",
]
`))
	require.NoError(t, err)

	pool := []*component.Component{
		poolComponent(1, component.TypeField, "sale.order", "x_studio_total"),
		poolComponent(2, component.TypeField, "sale.order", "x_studio_margin"),
	}

	stories := BuildUserStories("Sales", doc, pool, fixedEstimator{hours: 1}, noFallback(t))
	require.Len(t, stories, 2)

	assert.Equal(t, "First story", stories[0].Title)
	require.Len(t, stories[0].Components, 1)
	assert.Equal(t, 1, stories[0].Components[0].ID)

	// The second story only gets the component the first one left.
	assert.Equal(t, "Second story", stories[1].Title)
	require.Len(t, stories[1].Components, 1)
	assert.Equal(t, 2, stories[1].Components[0].ID)
}

func TestBuildUserStoriesDropsEmptyAndBucketsRest(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Sales"]
description = "d"

[features."Sales".user_stories."Ghost"]
description = "Nothing resolves"
components = ["field.sale_order.does_not_exist"]

[features."Sales".user_stories."Real"]
description = "One match"
components = ["field.sale_order.x_studio_total"]
`))
	require.NoError(t, err)

	pool := []*component.Component{
		poolComponent(1, component.TypeField, "sale.order", "x_studio_total"),
		poolComponent(2, component.TypeView, "sale.order", "custom_form"),
	}

	stories := BuildUserStories("Sales", doc, pool, fixedEstimator{hours: 2}, noFallback(t))
	require.Len(t, stories, 2)

	assert.Equal(t, "One match", stories[0].Title)

	last := stories[len(stories)-1]
	assert.Equal(t, "Other Components", last.Title)
	require.Len(t, last.Components, 1)
	assert.Equal(t, 2, last.Components[0].ID)

	// Every pool component appears in exactly one story.
	seen := make(map[int]int)
	for _, s := range stories {
		for _, c := range s.Components {
			seen[c.ID]++
		}
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1}, seen)
}

func TestBuildUserStoriesLegacyArrayDocument(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Sales"]
description = "d"

[[features."Sales".user_stories]]
description = "Legacy story"
components = ["field.sale_order.x_studio_total"]
`))
	require.NoError(t, err)

	pool := []*component.Component{
		poolComponent(1, component.TypeField, "sale.order", "x_studio_total"),
	}

	// Declared stories win over the fallback grouping for the legacy
	// array shape too.
	stories := BuildUserStories("Sales", doc, pool, fixedEstimator{hours: 1}, noFallback(t))
	require.Len(t, stories, 1)
	assert.Equal(t, "Legacy story", stories[0].Title)
	require.Len(t, stories[0].Components, 1)
	assert.Equal(t, 1, stories[0].Components[0].ID)
}

func TestBuildUserStoriesFallback(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Deprecated Feature"]
_deprecated = true

[features."Storyless"]
description = "no user_stories entry"
`))
	require.NoError(t, err)

	pool := []*component.Component{
		poolComponent(1, component.TypeField, "sale.order", "x_studio_total"),
	}
	fallback := func(name string, p []*component.Component) []UserStory {
		return []UserStory{{Title: name + " (auto)", Components: p}}
	}

	for _, name := range []string{"Deprecated Feature", "Storyless", "Unmapped Feature"} {
		stories := BuildUserStories(name, doc, pool, fixedEstimator{hours: 1}, fallback)
		require.Len(t, stories, 1, name)
		assert.Equal(t, name+" (auto)", stories[0].Title)
	}
}

func TestBuildUserStoriesRoundsHours(t *testing.T) {
	doc, err := Parse([]byte(`
[features."Sales"]
description = "d"

[features."Sales".user_stories."Story"]
description = "Story"
components = [
  "field.sale_order.a",
  "field.sale_order.b",
  "field.sale_order.c",
]
`))
	require.NoError(t, err)

	pool := []*component.Component{
		poolComponent(1, component.TypeField, "sale.order", "a"),
		poolComponent(2, component.TypeField, "sale.order", "b"),
		poolComponent(3, component.TypeField, "sale.order", "c"),
	}

	stories := BuildUserStories("Sales", doc, pool, fixedEstimator{hours: 1.0 / 3.0}, noFallback(t))
	require.Len(t, stories, 1)
	assert.Equal(t, 1.0, stories[0].EstimatedHours)
}
