// SPDX-License-Identifier: AGPL-3.0-or-later

package syncengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/estimate"
	"github.com/odoosync/odoosync/internal/feature"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/odoo"
	"github.com/odoosync/odoosync/internal/task"
)

// memoryAPI is a minimal in-memory Odoo task store.
type memoryAPI struct {
	nextID  int
	records map[string][]map[string]any
}

func newMemoryAPI() *memoryAPI {
	return &memoryAPI{nextID: 1000, records: make(map[string][]map[string]any)}
}

func (m *memoryAPI) SearchRead(_ context.Context, model string, domain []any, _ odoo.SearchReadOptions) ([]map[string]any, error) {
	var out []map[string]any
	for _, rec := range m.records[model] {
		matched := true
		for _, clause := range domain {
			triple, ok := clause.([]any)
			if !ok || len(triple) != 3 {
				continue
			}
			field, _ := triple[0].(string)
			op, _ := triple[1].(string)
			if op == "=" && rec[field] != triple[2] {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryAPI) Create(_ context.Context, model string, vals map[string]any) (int, error) {
	m.nextID++
	rec := make(map[string]any, len(vals)+1)
	for k, v := range vals {
		rec[k] = v
	}
	rec["id"] = float64(m.nextID)
	m.records[model] = append(m.records[model], rec)
	return m.nextID, nil
}

func (m *memoryAPI) Write(_ context.Context, model string, ids []int, vals map[string]any) error {
	for _, rec := range m.records[model] {
		id, _ := rec["id"].(float64)
		for _, want := range ids {
			if int(id) == want {
				for k, v := range vals {
					rec[k] = v
				}
			}
		}
	}
	return nil
}

func testEstimator(t *testing.T) *estimate.Estimator {
	t.Helper()
	table := make(map[string]map[string]estimate.Breakdown)
	for _, typ := range []string{"field", "view", "server_action", "automation", "report"} {
		table[typ] = map[string]estimate.Breakdown{
			"simple": {Development: 1},
			"medium": {Development: 2},
		}
	}
	return estimate.NewEstimator(estimate.NewMetrics(table))
}

func testPool() []*component.Component {
	return []*component.Component{
		{ID: 1, Name: "x_studio_total", Type: component.TypeField, Model: "sale.order", Complexity: "simple"},
		{ID: 2, Name: "x_studio_margin", Type: component.TypeField, Model: "sale.order", Complexity: "medium"},
		{ID: 3, Name: "custom_form", Type: component.TypeView, Model: "sale.order", Complexity: "simple"},
	}
}

func testDoc(t *testing.T) *mapping.Document {
	t.Helper()
	doc, err := mapping.Parse([]byte(`
[features."Sales Order Customizations"]
description = "d"

[features."Sales Order Customizations".user_stories."Fields"]
description = "Field work"
components = [
  "field.sale_order.x_studio_total",
  "field.sale_order.x_studio_margin",
]
`))
	require.NoError(t, err)
	return doc
}

func TestBuildStories(t *testing.T) {
	e := New(feature.NewDetector(feature.DefaultMapping()), testDoc(t), testEstimator(t), nil, true)

	stories := e.BuildStories(testPool())
	require.Contains(t, stories, "Sales Order Customizations")

	got := stories["Sales Order Customizations"]
	require.Len(t, got, 2)
	assert.Equal(t, "Field work", got[0].Title)
	assert.Len(t, got[0].Components, 2)
	assert.Equal(t, 3.0, got[0].EstimatedHours)
	assert.Equal(t, "Other Components", got[1].Title)
}

func TestSyncDryRunCountsWithoutTasks(t *testing.T) {
	e := New(feature.NewDetector(feature.DefaultMapping()), testDoc(t), testEstimator(t), nil, true)

	res, err := e.Sync(context.Background(), testPool())
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Features)
	assert.Equal(t, 2, res.Stories)
	assert.Equal(t, 3, res.Components)
	assert.Equal(t, 4.0, res.EstimatedHours)
	assert.Zero(t, res.TasksCreated)
	assert.Zero(t, res.TasksUpdated)
	assert.Contains(t, res.Summary(), "dry-run")
}

func TestSyncCreatesFeatureAndStoryTasks(t *testing.T) {
	api := newMemoryAPI()
	manager := task.NewManager(api, 7, false)
	e := New(feature.NewDetector(feature.DefaultMapping()), testDoc(t), testEstimator(t), manager, false)

	res, err := e.Sync(context.Background(), testPool())
	require.NoError(t, err)

	// One parent feature task plus two story subtasks.
	assert.Equal(t, 3, res.TasksCreated)
	assert.Zero(t, res.TasksUpdated)

	tasks := api.records["project.task"]
	require.Len(t, tasks, 3)

	byName := make(map[string]map[string]any)
	for _, rec := range tasks {
		name, _ := rec["name"].(string)
		byName[name] = rec
	}

	parent := byName["Sales Order Customizations"]
	require.NotNil(t, parent)
	assert.Nil(t, parent["parent_id"])

	sub := byName["Field work"]
	require.NotNil(t, sub)
	parentID, _ := parent["id"].(float64)
	assert.Equal(t, int(parentID), sub["parent_id"])

	// Stages exist for the board.
	assert.Len(t, api.records["project.task.type"], len(task.StageNames))
}

func TestSyncSecondRunUpdates(t *testing.T) {
	api := newMemoryAPI()
	manager := task.NewManager(api, 7, false)
	e := New(feature.NewDetector(feature.DefaultMapping()), testDoc(t), testEstimator(t), manager, false)

	_, err := e.Sync(context.Background(), testPool())
	require.NoError(t, err)

	res, err := e.Sync(context.Background(), testPool())
	require.NoError(t, err)

	assert.Zero(t, res.TasksCreated)
	assert.Equal(t, 3, res.TasksUpdated)
	assert.Len(t, api.records["project.task"], 3)
}

func TestSyncSurfacesValidationWarnings(t *testing.T) {
	doc, err := mapping.Parse([]byte(`
[features."Storyless"]
description = "no stories"
`))
	require.NoError(t, err)

	e := New(feature.NewDetector(feature.DefaultMapping()), doc, testEstimator(t), nil, true)
	res, err := e.Sync(context.Background(), testPool())
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Storyless")
}
