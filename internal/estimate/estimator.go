// SPDX-License-Identifier: AGPL-3.0-or-later

package estimate

import (
	"fmt"
	"math"
	"strings"

	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/mapping"
)

// complexityMap folds the complexity spellings seen in the wild onto the
// four canonical levels.
var complexityMap = map[string]string{
	"simple":       component.ComplexitySimple,
	"moderate":     component.ComplexityMedium,
	"medium":       component.ComplexityMedium,
	"complex":      component.ComplexityComplex,
	"very_complex": component.ComplexityVeryComplex,
	"very complex": component.ComplexityVeryComplex,
}

// NormalizeComplexity maps a raw complexity label to a canonical level.
// Unknown labels fall back to medium.
func NormalizeComplexity(raw string) string {
	if c, ok := complexityMap[strings.ToLower(raw)]; ok {
		return c
	}
	return component.ComplexityMedium
}

// Estimator produces hour estimates for components and features.
type Estimator struct {
	metrics *Metrics
}

// NewEstimator creates an estimator backed by the given metrics table.
func NewEstimator(metrics *Metrics) *Estimator {
	return &Estimator{metrics: metrics}
}

// Estimate returns the full activity breakdown for one component.
// Components flagged as having no source to evaluate get zero hours.
func (e *Estimator) Estimate(c *component.Component) Breakdown {
	if noSource, _ := c.Raw["no_source_to_evaluate"].(bool); noSource {
		return Breakdown{}
	}
	b, err := e.metrics.Hours(string(c.Type), NormalizeComplexity(c.Complexity))
	if err != nil {
		// The metrics table is validated at load time; an unknown pairing
		// here means an unexpected complexity label. Estimate as medium.
		b, _ = e.metrics.Hours(string(c.Type), component.ComplexityMedium)
	}
	return b
}

// EstimateComponent returns total hours for one component. It satisfies
// mapping.Estimator.
func (e *Estimator) EstimateComponent(c *component.Component) float64 {
	return e.Estimate(c).Total()
}

// EstimateAll returns the summed total hours for a pool.
func (e *Estimator) EstimateAll(pool []*component.Component) float64 {
	var total float64
	for _, c := range pool {
		total += e.EstimateComponent(c)
	}
	return math.Round(total*10) / 10
}

// GroupByType is the default user-story grouping used when a feature has no
// entry in the mapping document: one story per component type present.
func (e *Estimator) GroupByType(featureName string, pool []*component.Component) []mapping.UserStory {
	order := []component.Type{
		component.TypeField,
		component.TypeView,
		component.TypeServerAction,
		component.TypeAutomation,
		component.TypeReport,
	}

	byType := make(map[component.Type][]*component.Component)
	for _, c := range pool {
		byType[c.Type] = append(byType[c.Type], c)
	}

	var stories []mapping.UserStory
	for _, t := range order {
		comps := byType[t]
		if len(comps) == 0 {
			continue
		}
		var hours float64
		for _, c := range comps {
			hours += e.EstimateComponent(c)
		}
		stories = append(stories, mapping.UserStory{
			Title:          fmt.Sprintf("%s: %s changes", featureName, t.Label()),
			Description:    fmt.Sprintf("Implement %d %s component(s)", len(comps), strings.ToLower(t.Label())),
			Components:     comps,
			EstimatedHours: math.Round(hours*10) / 10,
		})
	}
	return stories
}
