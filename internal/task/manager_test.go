// SPDX-License-Identifier: AGPL-3.0-or-later

package task

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/odoo"
)

// fakeAPI is an in-memory project.task / project.task.type / project.tags
// store.
type fakeAPI struct {
	nextID  int
	records map[string][]map[string]any

	creates []string
	writes  []int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, records: make(map[string][]map[string]any)}
}

func (f *fakeAPI) SearchRead(_ context.Context, model string, domain []any, _ odoo.SearchReadOptions) ([]map[string]any, error) {
	var out []map[string]any
	for _, rec := range f.records[model] {
		if matchesDomain(rec, domain) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// matchesDomain supports the equality clauses the manager issues; any other
// operator matches everything.
func matchesDomain(rec map[string]any, domain []any) bool {
	for _, clause := range domain {
		triple, ok := clause.([]any)
		if !ok || len(triple) != 3 {
			continue
		}
		field, _ := triple[0].(string)
		op, _ := triple[1].(string)
		if op != "=" {
			continue
		}
		if rec[field] != triple[2] {
			return false
		}
	}
	return true
}

func (f *fakeAPI) Create(_ context.Context, model string, vals map[string]any) (int, error) {
	f.nextID++
	rec := make(map[string]any, len(vals)+1)
	for k, v := range vals {
		rec[k] = v
	}
	rec["id"] = float64(f.nextID)
	f.records[model] = append(f.records[model], rec)
	f.creates = append(f.creates, fmt.Sprintf("%s:%v", model, vals["name"]))
	return f.nextID, nil
}

func (f *fakeAPI) Write(_ context.Context, model string, ids []int, vals map[string]any) error {
	f.writes = append(f.writes, ids...)
	for _, rec := range f.records[model] {
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

func story(title string, comps ...*component.Component) mapping.UserStory {
	return mapping.UserStory{
		Title:          title,
		Description:    "desc",
		Components:     comps,
		EstimatedHours: 4.5,
	}
}

func TestEnsureStages(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(api, 3, false)

	stages, err := m.EnsureStages(context.Background())
	require.NoError(t, err)
	require.Len(t, stages, 3)
	for _, name := range StageNames {
		assert.Greater(t, stages[name], 0, name)
	}

	// Second run finds the existing stages instead of recreating them.
	created := len(api.creates)
	_, err = m.EnsureStages(context.Background())
	require.NoError(t, err)
	assert.Len(t, api.creates, created)
}

func TestEnsureTaskCreatesWithStageAndTags(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(api, 3, false)
	_, err := m.EnsureStages(context.Background())
	require.NoError(t, err)

	s := story("Custom Fields",
		&component.Component{ID: 1, Name: "x_studio_total", Type: component.TypeField, Complexity: "medium"},
		&component.Component{ID: 2, Name: "custom_form", Type: component.TypeView, Complexity: "simple"},
	)

	id, err := m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)
	assert.Greater(t, id, 0)

	found, err := m.FindTaskByName(context.Background(), "Custom Fields")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	rec := api.records["project.task"][0]
	assert.Equal(t, 3, rec["project_id"])
	assert.Equal(t, 4.5, rec["allocated_hours"])
	assert.NotNil(t, rec["stage_id"])
	assert.NotNil(t, rec["tag_ids"])

	// field + view type tags plus the aggregate complexity tag.
	assert.Contains(t, api.creates, "project.tags:field")
	assert.Contains(t, api.creates, "project.tags:view")
	assert.Contains(t, api.creates, "project.tags:medium")
}

func TestEnsureTaskUpdatesExisting(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(api, 3, false)

	s := story("Custom Fields",
		&component.Component{ID: 1, Name: "x_studio_total", Type: component.TypeField, Complexity: "simple"})

	first, err := m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)

	s.EstimatedHours = 9.0
	second, err := m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{first}, api.writes)
	assert.Equal(t, 9.0, api.records["project.task"][0]["allocated_hours"])
}

func TestPreserveLoggedHours(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(api, 3, false)
	m.PreserveLoggedHours(func(_ context.Context, _ int) float64 {
		return 8.0
	})

	s := story("Custom Fields",
		&component.Component{ID: 1, Name: "x", Type: component.TypeField, Complexity: "simple"})

	// Creation is unaffected.
	_, err := m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.5, api.records["project.task"][0]["allocated_hours"])

	// An update keeps the allocation at the logged time when the new
	// estimate would fall below it.
	s.EstimatedHours = 2.0
	_, err = m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)
	assert.Equal(t, 8.0, api.records["project.task"][0]["allocated_hours"])

	// A higher estimate still wins.
	s.EstimatedHours = 12.0
	_, err = m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)
	assert.Equal(t, 12.0, api.records["project.task"][0]["allocated_hours"])
}

func TestEnsureTaskParent(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(api, 3, false)

	s := story("Sub Story",
		&component.Component{ID: 1, Name: "x", Type: component.TypeField, Complexity: "simple"})

	id, err := m.EnsureTask(context.Background(), s, 42)
	require.NoError(t, err)
	require.Greater(t, id, 0)
	assert.Equal(t, 42, api.records["project.task"][0]["parent_id"])
}

// tagFailAPI fails tag lookups while leaving task operations alone.
type tagFailAPI struct{ *fakeAPI }

func (f tagFailAPI) SearchRead(ctx context.Context, model string, domain []any, opts odoo.SearchReadOptions) ([]map[string]any, error) {
	if model == "project.tags" {
		return nil, fmt.Errorf("connection reset")
	}
	return f.fakeAPI.SearchRead(ctx, model, domain, opts)
}

func TestEnsureTaskSurfacesTagErrors(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(tagFailAPI{api}, 3, false)

	s := story("Custom Fields",
		&component.Component{ID: 1, Name: "x", Type: component.TypeField, Complexity: "simple"})

	_, err := m.EnsureTask(context.Background(), s, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ensuring tags for "Custom Fields"`)
	// The task itself is not created when tagging fails.
	assert.Empty(t, api.creates)
}

func TestDryRunWritesNothing(t *testing.T) {
	api := newFakeAPI()
	m := NewManager(api, 3, true)

	_, err := m.EnsureStages(context.Background())
	require.NoError(t, err)

	s := story("Custom Fields",
		&component.Component{ID: 1, Name: "x", Type: component.TypeField, Complexity: "simple"})
	_, err = m.EnsureTask(context.Background(), s, 0)
	require.NoError(t, err)

	assert.Empty(t, api.creates)
	assert.Empty(t, api.writes)
}

func TestTagsForStory(t *testing.T) {
	s := story("s",
		&component.Component{Type: component.TypeField, Complexity: "simple"},
		&component.Component{Type: component.TypeField, Complexity: "very_complex"},
		&component.Component{Type: component.TypeAutomation, Complexity: "medium"},
	)

	assert.Equal(t, []string{"field", "automation", "very_complex"}, TagsForStory(s))
}

func TestAggregateComplexity(t *testing.T) {
	assert.Equal(t, "", AggregateComplexity(nil))
	assert.Equal(t, "complex", AggregateComplexity([]*component.Component{
		{Complexity: "simple"},
		{Complexity: "complex"},
		{Complexity: "medium"},
	}))
}

func TestFormatDescription(t *testing.T) {
	s := story("s", &component.Component{
		Name:       "x_studio_total",
		Type:       component.TypeField,
		Model:      "sale.order",
		Complexity: "medium",
	})
	s.Description = "A <b>summary</b>"

	out := FormatDescription(s)
	assert.Contains(t, out, "&lt;b&gt;summary&lt;/b&gt;")
	assert.Contains(t, out, "<td>Field</td>")
	assert.Contains(t, out, "<td>sale.order</td>")
	assert.Contains(t, out, "Estimated: 4.5 hours")
}
