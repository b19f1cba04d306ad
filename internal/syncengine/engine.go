// SPDX-License-Identifier: AGPL-3.0-or-later

// Package syncengine drives a full sync: group the extracted component pool
// into features and user stories, then mirror them as tasks in the
// development instance.
package syncengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/odoosync/odoosync/internal/component"
	"github.com/odoosync/odoosync/internal/estimate"
	"github.com/odoosync/odoosync/internal/feature"
	"github.com/odoosync/odoosync/internal/mapping"
	"github.com/odoosync/odoosync/internal/task"
)

// Result summarizes one sync run.
type Result struct {
	DryRun         bool
	Features       int
	Stories        int
	Components     int
	EstimatedHours float64
	TasksCreated   int
	TasksUpdated   int
	Warnings       []string
}

// Summary renders a one-paragraph human summary.
func (r *Result) Summary() string {
	mode := "executed"
	if r.DryRun {
		mode = "dry-run"
	}
	return fmt.Sprintf(
		"sync %s: %d feature(s), %d user story(ies), %d component(s), %.1fh estimated, %d task(s) created, %d updated",
		mode, r.Features, r.Stories, r.Components, r.EstimatedHours, r.TasksCreated, r.TasksUpdated)
}

// Engine wires the detector, mapper, estimator, and task manager together.
type Engine struct {
	detector  *feature.Detector
	doc       *mapping.Document
	estimator *estimate.Estimator
	tasks     *task.Manager
	dryRun    bool
}

// New builds a sync engine. tasks may be nil for report-only runs.
func New(detector *feature.Detector, doc *mapping.Document, estimator *estimate.Estimator, tasks *task.Manager, dryRun bool) *Engine {
	return &Engine{
		detector:  detector,
		doc:       doc,
		estimator: estimator,
		tasks:     tasks,
		dryRun:    dryRun,
	}
}

// BuildStories groups the pool into features and resolves each feature's
// user stories through the mapping document, falling back to group-by-type
// for unmapped features.
func (e *Engine) BuildStories(pool []*component.Component) map[string][]mapping.UserStory {
	stories := make(map[string][]mapping.UserStory)
	for _, f := range e.detector.Detect(pool) {
		stories[f.Name] = mapping.BuildUserStories(
			f.Name, e.doc, f.Components, e.estimator, e.estimator.GroupByType)
	}
	return stories
}

// Sync runs the full pipeline against a component pool.
func (e *Engine) Sync(ctx context.Context, pool []*component.Component) (*Result, error) {
	res := &Result{
		DryRun:   e.dryRun,
		Warnings: mapping.Validate(e.doc),
	}

	features := e.detector.Detect(pool)
	res.Features = len(features)

	if e.tasks != nil {
		if _, err := e.tasks.EnsureStages(ctx); err != nil {
			return nil, fmt.Errorf("ensuring stages: %w", err)
		}
	}

	for _, f := range features {
		stories := mapping.BuildUserStories(
			f.Name, e.doc, f.Components, e.estimator, e.estimator.GroupByType)

		var featureTaskID int
		if e.tasks != nil {
			var err error
			featureTaskID, err = e.syncFeatureTask(ctx, f, stories, res)
			if err != nil {
				return nil, err
			}
		}

		for _, story := range stories {
			res.Stories++
			res.Components += len(story.Components)
			res.EstimatedHours += story.EstimatedHours

			if e.tasks == nil {
				continue
			}
			existing, err := e.tasks.FindTaskByName(ctx, story.Title)
			if err != nil {
				return nil, err
			}
			if _, err := e.tasks.EnsureTask(ctx, story, featureTaskID); err != nil {
				return nil, err
			}
			if existing > 0 {
				res.TasksUpdated++
			} else {
				res.TasksCreated++
			}
		}
	}

	return res, nil
}

// syncFeatureTask creates the parent task grouping a feature's stories.
func (e *Engine) syncFeatureTask(ctx context.Context, f *feature.Feature, stories []mapping.UserStory, res *Result) (int, error) {
	var hours float64
	var count int
	for _, s := range stories {
		hours += s.EstimatedHours
		count += len(s.Components)
	}

	parent := mapping.UserStory{
		Title:          f.Name,
		Description:    featureDescription(f, count),
		EstimatedHours: hours,
	}

	existing, err := e.tasks.FindTaskByName(ctx, parent.Title)
	if err != nil {
		return 0, err
	}
	id, err := e.tasks.EnsureTask(ctx, parent, 0)
	if err != nil {
		return 0, fmt.Errorf("syncing feature task %q: %w", f.Name, err)
	}
	if existing > 0 {
		res.TasksUpdated++
	} else {
		res.TasksCreated++
	}
	return id, nil
}

func featureDescription(f *feature.Feature, componentCount int) string {
	desc := f.Description
	if desc == "" {
		desc = fmt.Sprintf("Customizations grouped under %s", f.Name)
	}

	models := make([]string, 0, len(f.AffectedModels))
	for m := range f.AffectedModels {
		models = append(models, m)
	}
	if len(models) > 0 {
		sort.Strings(models)
		desc += fmt.Sprintf(" (%d components across %s)", componentCount, strings.Join(models, ", "))
	}
	return desc
}
