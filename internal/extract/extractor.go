// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract pulls Studio customization records out of an Odoo
// instance and writes one JSON output file per component type.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odoosync/odoosync/internal/config"
	"github.com/odoosync/odoosync/internal/odoo"
)

// Result summarizes one extractor run.
type Result struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	OutputFile string `json:"output_file"`
	DryRun     bool   `json:"dry_run"`
}

// envelope is the on-disk shape of an extraction output file.
type envelope struct {
	ExtractedAt string           `json:"extracted_at"`
	Model       string           `json:"model"`
	Count       int              `json:"count"`
	Records     []map[string]any `json:"records"`
}

// spec describes one extractor: the Odoo model it queries, the fields it
// pulls, and how records are cleaned up for output.
type spec struct {
	name       string
	model      string
	outputFile string
	fields     []string
	domain     func(f config.ExtractionFilters) config.Domain
	transform  func(rec map[string]any)
}

var specs = []spec{
	{
		name:       "custom_fields",
		model:      "ir.model.fields",
		outputFile: "custom_fields_output.json",
		fields: []string{
			"id", "name", "field_description", "model", "model_id", "ttype",
			"state", "required", "readonly", "store", "index", "copied",
			"relation", "relation_field", "domain", "compute", "depends",
			"help", "groups",
		},
		domain: func(f config.ExtractionFilters) config.Domain { return f.CustomFields },
		transform: func(rec map[string]any) {
			name, _ := rec["name"].(string)
			rec["is_studio"] = strings.HasPrefix(name, "x_studio_") ||
				(strings.HasPrefix(name, "x_") && rec["state"] == "manual")
		},
	},
	{
		name:       "views",
		model:      "ir.ui.view",
		outputFile: "views_metadata.json",
		fields: []string{
			"id", "name", "model", "type", "mode", "inherit_id", "arch",
			"priority", "active", "xml_id",
		},
		domain: func(f config.ExtractionFilters) config.Domain { return f.Views },
		transform: func(rec map[string]any) {
			xmlID, _ := rec["xml_id"].(string)
			rec["is_studio"] = strings.Contains(xmlID, "studio")
			flattenRelation(rec, "inherit_id")
		},
	},
	{
		name:       "server_actions",
		model:      "ir.actions.server",
		outputFile: "server_actions_output.json",
		fields: []string{
			"id", "name", "type", "state", "model_id", "binding_model_id",
			"code", "usage", "create_date", "write_date",
		},
		domain: func(f config.ExtractionFilters) config.Domain { return f.ServerActions },
		transform: func(rec map[string]any) {
			rec["model_name"] = flattenRelation(rec, "model_id")
			flattenRelation(rec, "binding_model_id")
			name, _ := rec["name"].(string)
			rec["is_studio"] = strings.Contains(strings.ToLower(name), "studio")
		},
	},
	{
		name:       "automations",
		model:      "base.automation",
		outputFile: "auto_actions_output.json",
		fields: []string{
			"id", "name", "active", "model_id", "trigger", "filter_domain",
			"filter_pre_domain", "trg_date_range", "trg_date_range_type",
			"create_date", "write_date",
		},
		domain: func(f config.ExtractionFilters) config.Domain { return f.Automations },
		transform: func(rec map[string]any) {
			rec["model_name"] = flattenRelation(rec, "model_id")
		},
	},
	{
		name:       "reports",
		model:      "ir.actions.report",
		outputFile: "reports_output.json",
		fields: []string{
			"id", "name", "model", "report_type", "report_name",
			"print_report_name", "attachment", "binding_model_id", "groups_id",
		},
		domain: func(f config.ExtractionFilters) config.Domain { return f.Reports },
		transform: func(rec map[string]any) {
			flattenRelation(rec, "binding_model_id")
			name, _ := rec["name"].(string)
			reportName, _ := rec["report_name"].(string)
			rec["is_studio"] = strings.Contains(strings.ToLower(name), "studio") ||
				strings.Contains(strings.ToLower(reportName), "studio")
		},
	},
}

// flattenRelation rewrites an Odoo [id, name] relation tuple to its name
// and returns it.
func flattenRelation(rec map[string]any, key string) string {
	pair, ok := rec[key].([]any)
	if !ok || len(pair) < 2 {
		return ""
	}
	name, _ := pair[1].(string)
	rec[key] = name
	return name
}

// Runner executes every extractor against one instance.
type Runner struct {
	client    *odoo.Client
	filters   config.ExtractionFilters
	outputDir string
	dryRun    bool
}

// NewRunner builds an extraction runner. When dryRun is set no files are
// written.
func NewRunner(client *odoo.Client, filters config.ExtractionFilters, outputDir string, dryRun bool) *Runner {
	return &Runner{client: client, filters: filters, outputDir: outputDir, dryRun: dryRun}
}

// RunAll executes every extractor in order, continuing past individual
// failures and reporting them together at the end.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	var results []Result
	var failed []string

	for _, s := range specs {
		res, err := r.runOne(ctx, s)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		results = append(results, res)
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("extraction failed: %s", strings.Join(failed, "; "))
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, s spec) (Result, error) {
	domain := s.domain(r.filters)
	if len(domain) == 0 {
		return Result{}, fmt.Errorf("no extraction filter configured for %s", s.name)
	}

	records, err := r.client.SearchRead(ctx, s.model, domain.AsList(), odoo.SearchReadOptions{
		Fields: s.fields,
		Order:  "id asc",
	})
	if err != nil {
		return Result{}, err
	}

	for _, rec := range records {
		if s.transform != nil {
			s.transform(rec)
		}
	}

	res := Result{
		Name:       s.name,
		Count:      len(records),
		OutputFile: s.outputFile,
		DryRun:     r.dryRun,
	}
	if r.dryRun {
		return res, nil
	}

	if err := r.writeOutput(s, records); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (r *Runner) writeOutput(s spec, records []map[string]any) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(envelope{
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		Model:       s.model,
		Count:       len(records),
		Records:     records,
	}, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(r.outputDir, s.outputFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
