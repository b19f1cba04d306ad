// SPDX-License-Identifier: AGPL-3.0-or-later

// Package task mirrors user stories as project tasks in the development
// Odoo instance.
package task

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/odoo"
)

// API is the slice of the Odoo client the task manager needs. Tests
// substitute a fake.
type API interface {
	SearchRead(ctx context.Context, model string, domain []any, opts odoo.SearchReadOptions) ([]map[string]any, error)
	Create(ctx context.Context, model string, vals map[string]any) (int, error)
	Write(ctx context.Context, model string, ids []int, vals map[string]any) error
}

// StageNames in board order.
var StageNames = []string{"Backlog", "In Progress", "Done"}

// tagColors assigns Odoo color indexes to well-known tag names.
var tagColors = map[string]int{
	"field":         5,
	"view":          4,
	"server_action": 6,
	"automation":    7,
	"report":        9,
	"simple":        10,
	"medium":        3,
	"complex":       2,
	"very_complex":  1,
}

// LoggedHoursFunc reports hours already logged on a task.
type LoggedHoursFunc func(ctx context.Context, taskID int) float64

// Manager creates and updates project tasks.
type Manager struct {
	api         API
	projectID   int
	dryRun      bool
	loggedHours LoggedHoursFunc

	stageCache map[string]int
	tagCache   map[string]int
}

// NewManager builds a task manager for one project. With dryRun set, write
// operations are skipped and placeholder ids are returned.
func NewManager(api API, projectID int, dryRun bool) *Manager {
	return &Manager{
		api:        api,
		projectID:  projectID,
		dryRun:     dryRun,
		stageCache: make(map[string]int),
		tagCache:   make(map[string]int),
	}
}

// PreserveLoggedHours keeps allocated hours on an existing task from
// dropping below the time already logged against it.
func (m *Manager) PreserveLoggedHours(fn LoggedHoursFunc) {
	m.loggedHours = fn
}

// EnsureTask creates a task for the story, or updates the existing task
// with the same name in the project. Returns the task id.
func (m *Manager) EnsureTask(ctx context.Context, story mapping.UserStory, parentID int) (int, error) {
	existing, err := m.FindTaskByName(ctx, story.Title)
	if err != nil {
		return 0, err
	}

	vals := map[string]any{
		"name":            story.Title,
		"project_id":      m.projectID,
		"description":     FormatDescription(story),
		"allocated_hours": story.EstimatedHours,
	}
	if parentID > 0 {
		vals["parent_id"] = parentID
	}
	tagIDs, err := m.ensureStoryTags(ctx, story)
	if err != nil {
		return 0, fmt.Errorf("ensuring tags for %q: %w", story.Title, err)
	}
	if len(tagIDs) > 0 {
		vals["tag_ids"] = []any{[]any{6, 0, tagIDs}}
	}

	if existing > 0 {
		if m.loggedHours != nil {
			if logged := m.loggedHours(ctx, existing); logged > story.EstimatedHours {
				vals["allocated_hours"] = logged
			}
		}
		if m.dryRun {
			return existing, nil
		}
		if err := m.api.Write(ctx, "project.task", []int{existing}, vals); err != nil {
			return 0, fmt.Errorf("updating task %q: %w", story.Title, err)
		}
		return existing, nil
	}

	if m.dryRun {
		return 0, nil
	}
	if stageID, err := m.StageID(ctx, "Backlog"); err == nil {
		vals["stage_id"] = stageID
	}
	id, err := m.api.Create(ctx, "project.task", vals)
	if err != nil {
		return 0, fmt.Errorf("creating task %q: %w", story.Title, err)
	}
	return id, nil
}

// FindTaskByName finds a task in the project by exact name, 0 if absent.
func (m *Manager) FindTaskByName(ctx context.Context, name string) (int, error) {
	records, err := m.api.SearchRead(ctx, "project.task",
		[]any{
			[]any{"project_id", "=", m.projectID},
			[]any{"name", "=", name},
		},
		odoo.SearchReadOptions{Fields: []string{"id"}, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("searching task %q: %w", name, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	id, _ := records[0]["id"].(float64)
	return int(id), nil
}

// EnsureStages creates the standard stages in the project if missing and
// returns their ids by name.
func (m *Manager) EnsureStages(ctx context.Context) (map[string]int, error) {
	stages := make(map[string]int, len(StageNames))
	for seq, name := range StageNames {
		id, err := m.findStage(ctx, name)
		if err != nil {
			return nil, err
		}
		if id == 0 && !m.dryRun {
			id, err = m.api.Create(ctx, "project.task.type", map[string]any{
				"name":        name,
				"sequence":    seq,
				"project_ids": []any{[]any{4, m.projectID}},
			})
			if err != nil {
				return nil, fmt.Errorf("creating stage %q: %w", name, err)
			}
		}
		stages[name] = id
		m.stageCache[name] = id
	}
	return stages, nil
}

// StageID returns the id of a stage by name, consulting the cache first.
func (m *Manager) StageID(ctx context.Context, name string) (int, error) {
	if id, ok := m.stageCache[name]; ok && id > 0 {
		return id, nil
	}
	id, err := m.findStage(ctx, name)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("stage %q not found; run sync with --execute to create stages", name)
	}
	m.stageCache[name] = id
	return id, nil
}

func (m *Manager) findStage(ctx context.Context, name string) (int, error) {
	records, err := m.api.SearchRead(ctx, "project.task.type",
		[]any{
			[]any{"project_ids", "in", []any{m.projectID}},
			[]any{"name", "=", name},
		},
		odoo.SearchReadOptions{Fields: []string{"id"}, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("searching stage %q: %w", name, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	id, _ := records[0]["id"].(float64)
	return int(id), nil
}

// ensureStoryTags materializes the type and complexity tags for a story.
func (m *Manager) ensureStoryTags(ctx context.Context, story mapping.UserStory) ([]int, error) {
	var ids []int
	for _, name := range TagsForStory(story) {
		id, err := m.ensureTag(ctx, name)
		if err != nil {
			return nil, err
		}
		if id > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Manager) ensureTag(ctx context.Context, name string) (int, error) {
	if id, ok := m.tagCache[name]; ok {
		return id, nil
	}

	records, err := m.api.SearchRead(ctx, "project.tags",
		[]any{[]any{"name", "=", name}},
		odoo.SearchReadOptions{Fields: []string{"id"}, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("searching tag %q: %w", name, err)
	}

	var id int
	if len(records) > 0 {
		f, _ := records[0]["id"].(float64)
		id = int(f)
	} else if !m.dryRun {
		id, err = m.api.Create(ctx, "project.tags", map[string]any{
			"name":  name,
			"color": tagColors[name],
		})
		if err != nil {
			return 0, fmt.Errorf("creating tag %q: %w", name, err)
		}
	}

	m.tagCache[name] = id
	return id, nil
}

// TagsForStory derives tag names from a story's components: one per
// component type present plus the aggregate complexity.
func TagsForStory(story mapping.UserStory) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, c := range story.Components {
		t := string(c.Type)
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	if agg := AggregateComplexity(story.Components); agg != "" {
		tags = append(tags, agg)
	}
	return tags
}

// AggregateComplexity returns the highest complexity among components.
func AggregateComplexity(comps []*component.Component) string {
	rank := map[string]int{
		component.ComplexitySimple:      1,
		component.ComplexityMedium:      2,
		component.ComplexityComplex:     3,
		component.ComplexityVeryComplex: 4,
	}
	var best string
	for _, c := range comps {
		if rank[c.Complexity] > rank[best] {
			best = c.Complexity
		}
	}
	return best
}

// FormatDescription renders the HTML task description Odoo displays: a
// short summary followed by a component table.
func FormatDescription(story mapping.UserStory) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(story.Description)))
	b.WriteString("<table>\n<tr><th>Type</th><th>Name</th><th>Model</th><th>Complexity</th></tr>\n")
	for _, c := range story.Components {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(c.TypeLabel()),
			html.EscapeString(c.Name),
			html.EscapeString(c.Model),
			html.EscapeString(c.Complexity)))
	}
	b.WriteString("</table>\n")
	b.WriteString(fmt.Sprintf("<p>Estimated: %.1f hours</p>\n", story.EstimatedHours))

	return b.String()
}
