// SPDX-License-Identifier: AGPL-3.0-or-later

// Package estimate turns component complexity labels into development-hour
// estimates using a configured metrics table.
package estimate

import (
	"encoding/json"
	"fmt"
	"os"
)

// Breakdown splits an estimate by activity.
type Breakdown struct {
	Development  float64 `json:"dev"`
	Requirements float64 `json:"req"`
	Testing      float64 `json:"test"`
}

// Total is the summed hours across activities.
func (b Breakdown) Total() float64 {
	return b.Development + b.Requirements + b.Testing
}

// Metrics holds per-type, per-complexity hour tables loaded from
// time_metrics.json.
type Metrics struct {
	table map[string]map[string]Breakdown
}

type metricsFile struct {
	TimeMetrics map[string]map[string]Breakdown `json:"time_metrics"`
}

// LoadMetrics reads a time_metrics.json file. The file is required for
// estimation; a missing file or missing time_metrics section is an error.
func LoadMetrics(path string) (*Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("time metrics file is required for estimation: %w", err)
	}

	var mf metricsFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing time metrics %s: %w", path, err)
	}
	if len(mf.TimeMetrics) == 0 {
		return nil, fmt.Errorf("time metrics %s has no time_metrics section", path)
	}

	return &Metrics{table: mf.TimeMetrics}, nil
}

// NewMetrics builds a Metrics from an in-memory table. Used by tests and by
// callers that embed defaults.
func NewMetrics(table map[string]map[string]Breakdown) *Metrics {
	return &Metrics{table: table}
}

// Hours returns the breakdown for a component type and complexity level.
func (m *Metrics) Hours(componentType, complexity string) (Breakdown, error) {
	levels, ok := m.table[componentType]
	if !ok {
		return Breakdown{}, fmt.Errorf("no time metrics for component type %q", componentType)
	}
	b, ok := levels[complexity]
	if !ok {
		return Breakdown{}, fmt.Errorf("no time metrics for %s complexity %q", componentType, complexity)
	}
	return b, nil
}
