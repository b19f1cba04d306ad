// SPDX-License-Identifier: AGPL-3.0-or-later

package component

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExtraction(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadExtractionDir(t *testing.T) {
	dir := t.TempDir()

	writeExtraction(t, dir, "custom_fields_output.json", `{
		"model": "ir.model.fields",
		"records": [
			{"id": 11, "name": "x_studio_total", "field_description": "Total", "model": "sale.order", "ttype": "float"},
			{"id": 12, "name": "x_studio_partner_ref", "field_description": false, "model": "sale.order", "ttype": "many2one"}
		]
	}`)
	writeExtraction(t, dir, "server_actions_output.json", `{
		"records": [
			{"id": 21, "name": "Send Reminder", "model_id": [85, "Sales Order"], "code": "send()", "is_studio": true, "file_path": "server_actions/send_reminder.py"}
		]
	}`)

	pool, err := LoadExtractionDir(dir)
	require.NoError(t, err)
	require.Len(t, pool, 3)

	total := pool[0]
	assert.Equal(t, 11, total.ID)
	assert.Equal(t, TypeField, total.Type)
	assert.Equal(t, "Total", total.DisplayName)
	assert.Equal(t, "sale.order", total.Model)
	assert.Equal(t, ComplexitySimple, total.Complexity)

	// Odoo serializes empty values as false; the name stands in.
	ref := pool[1]
	assert.Equal(t, "x_studio_partner_ref", ref.DisplayName)
	assert.Equal(t, ComplexityMedium, ref.Complexity)

	action := pool[2]
	assert.Equal(t, TypeServerAction, action.Type)
	assert.Equal(t, "Sales Order", action.Model)
	assert.True(t, action.IsStudio)
	assert.Equal(t, "server_actions/send_reminder.py", action.FilePath)
}

func TestLoadExtractionDirMissingFilesSkipped(t *testing.T) {
	pool, err := LoadExtractionDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestLoadExtractionDirMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeExtraction(t, dir, "views_metadata.json", `{not json`)

	_, err := LoadExtractionDir(dir)
	assert.Error(t, err)
}

func TestComplexityInference(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		rec      map[string]any
		expected string
	}{
		{
			name:     "computed field is medium",
			typ:      TypeField,
			rec:      map[string]any{"compute": "for r in self:\n  r.x = 1"},
			expected: ComplexityMedium,
		},
		{
			name:     "long compute is complex",
			typ:      TypeField,
			rec:      map[string]any{"compute": "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nk\nl"},
			expected: ComplexityComplex,
		},
		{
			name:     "relational field is medium",
			typ:      TypeField,
			rec:      map[string]any{"ttype": "one2many"},
			expected: ComplexityMedium,
		},
		{
			name:     "timed automation is medium",
			typ:      TypeAutomation,
			rec:      map[string]any{"trigger": "on_time"},
			expected: ComplexityMedium,
		},
		{
			name:     "pdf report is complex",
			typ:      TypeReport,
			rec:      map[string]any{"report_type": "qweb-pdf"},
			expected: ComplexityComplex,
		},
		{
			name:     "html report is medium",
			typ:      TypeReport,
			rec:      map[string]any{"report_type": "qweb-html"},
			expected: ComplexityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fromRecord(tt.rec, tt.typ)
			assert.Equal(t, tt.expected, c.Complexity)
		})
	}
}
