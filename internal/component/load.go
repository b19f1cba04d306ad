// SPDX-License-Identifier: AGPL-3.0-or-later

package component

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// extractionFiles maps the per-type extraction output files to the
// component type their records produce.
var extractionFiles = []struct {
	filename string
	typ      Type
}{
	{"custom_fields_output.json", TypeField},
	{"views_metadata.json", TypeView},
	{"server_actions_output.json", TypeServerAction},
	{"auto_actions_output.json", TypeAutomation},
	{"reports_output.json", TypeReport},
}

type extractionEnvelope struct {
	Records []map[string]any `json:"records"`
}

// LoadExtractionDir reads every known extraction output file under dir and
// returns the combined component pool. Missing files are skipped; a present
// but unreadable file is an error.
func LoadExtractionDir(dir string) ([]*Component, error) {
	var pool []*Component

	for _, ef := range extractionFiles {
		path := filepath.Join(dir, ef.filename)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading extraction file %s: %w", path, err)
		}

		var env extractionEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("parsing extraction file %s: %w", path, err)
		}

		for _, rec := range env.Records {
			pool = append(pool, fromRecord(rec, ef.typ))
		}
	}

	return pool, nil
}

// fromRecord builds a Component from one extraction record.
func fromRecord(rec map[string]any, typ Type) *Component {
	c := &Component{
		ID:       intField(rec, "id"),
		Name:     strField(rec, "name"),
		Type:     typ,
		IsStudio: boolField(rec, "is_studio"),
		FilePath: strField(rec, "file_path"),
		Raw:      rec,
	}

	switch typ {
	case TypeField:
		c.DisplayName = firstNonEmpty(strField(rec, "field_description"), c.Name)
		c.Model = strField(rec, "model")
		c.Complexity = inferFieldComplexity(rec)
	case TypeView:
		c.DisplayName = firstNonEmpty(strField(rec, "display_name"), c.Name)
		c.Model = strField(rec, "model")
		c.Complexity = inferViewComplexity(rec)
	case TypeServerAction:
		c.DisplayName = firstNonEmpty(strField(rec, "display_name"), c.Name)
		c.Model = firstNonEmpty(strField(rec, "model_name"), relationName(rec["model_id"]))
		c.Complexity = inferCodeComplexity(strField(rec, "code"))
	case TypeAutomation:
		c.DisplayName = firstNonEmpty(strField(rec, "display_name"), c.Name)
		c.Model = firstNonEmpty(strField(rec, "model_name"), relationName(rec["model_id"]))
		c.Complexity = inferAutomationComplexity(rec)
	case TypeReport:
		c.DisplayName = firstNonEmpty(strField(rec, "display_name"), c.Name)
		c.Model = strField(rec, "model")
		c.Complexity = inferReportComplexity(rec)
	}

	return c
}

// relationName extracts the display half of an Odoo [id, name] relation
// tuple, which JSON decodes as []any.
func relationName(v any) string {
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return ""
	}
	name, _ := pair[1].(string)
	return name
}

func inferFieldComplexity(rec map[string]any) string {
	if compute := strField(rec, "compute"); compute != "" {
		if lineCount(compute) > 10 {
			return ComplexityComplex
		}
		return ComplexityMedium
	}
	switch strField(rec, "ttype") {
	case "many2one", "one2many", "many2many":
		return ComplexityMedium
	}
	return ComplexitySimple
}

func inferViewComplexity(rec map[string]any) string {
	return gradeByLines(lineCount(strField(rec, "arch")))
}

func inferCodeComplexity(code string) string {
	if code == "" {
		return ComplexitySimple
	}
	return gradeByLines(lineCount(code))
}

func inferAutomationComplexity(rec map[string]any) string {
	if code := strField(rec, "code"); code != "" {
		return inferCodeComplexity(code)
	}
	switch strField(rec, "trigger") {
	case "on_time", "on_time_created", "on_time_updated":
		return ComplexityMedium
	}
	if len(strField(rec, "filter_domain")) > 50 {
		return ComplexityMedium
	}
	return ComplexitySimple
}

func inferReportComplexity(rec map[string]any) string {
	if strField(rec, "report_type") == "qweb-pdf" {
		return ComplexityComplex
	}
	return ComplexityMedium
}

func gradeByLines(lines int) string {
	switch {
	case lines > 150:
		return ComplexityVeryComplex
	case lines > 50:
		return ComplexityComplex
	case lines > 20:
		return ComplexityMedium
	}
	return ComplexitySimple
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func strField(rec map[string]any, key string) string {
	// Odoo serializes absent values as false, so a type assertion is not enough.
	s, _ := rec[key].(string)
	return s
}

func intField(rec map[string]any, key string) int {
	f, _ := rec[key].(float64)
	return int(f)
}

func boolField(rec map[string]any, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
