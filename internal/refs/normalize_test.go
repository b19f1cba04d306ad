// SPDX-License-Identifier: AGPL-3.0-or-later

package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{
			name:     "trims and lowercases",
			ref:      "  View.Sale_Order.Custom Form  ",
			expected: "view.sale_order.custom form",
		},
		{
			name:     "interior punctuation preserved",
			ref:      "field.sale_order.x_studio_total (computed)",
			expected: "field.sale_order.x_studio_total (computed)",
		},
		{
			name:     "brackets preserved",
			ref:      "automation.sale_order.[AUTO] Notify",
			expected: "automation.sale_order.[auto] notify",
		},
		{
			name:     "already normalized",
			ref:      "report.sale_order.quotation",
			expected: "report.sale_order.quotation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.ref))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		expected Parsed
	}{
		{
			name:     "full reference",
			ref:      "view.sale_order.custom_form",
			expected: Parsed{Type: "view", Model: "sale_order", Name: "custom_form"},
		},
		{
			name:     "name keeps interior dots",
			ref:      "server_action.sale_order.archive.old.quotes",
			expected: Parsed{Type: "server_action", Model: "sale_order", Name: "archive.old.quotes"},
		},
		{
			name:     "legacy two segments",
			ref:      "view.custom_form",
			expected: Parsed{Type: "view", Name: "custom_form"},
		},
		{
			name:     "single segment",
			ref:      "view",
			expected: Parsed{Type: "view"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.ref))
		})
	}
}

func TestFilenameForm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces to underscores",
			input:    "Send Reminder Email",
			expected: "send_reminder_email",
		},
		{
			name:     "parens preserved",
			input:    "Archive Quotes (old)",
			expected: "archive_quotes_(old)",
		},
		{
			name:     "brackets preserved",
			input:    "[AUTO] Notify Sales",
			expected: "[auto]_notify_sales",
		},
		{
			name:     "underscores untouched",
			input:    "x_studio_total",
			expected: "x_studio_total",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilenameForm(tt.input))
		})
	}
}

func TestCandidateKeys(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		model    string
		ref      string
		expected []string
	}{
		{
			name:     "empty model gives legacy key",
			typ:      "view",
			model:    "",
			ref:      "custom_form",
			expected: []string{"view.custom_form"},
		},
		{
			name:  "dotted model adds underscore variant",
			typ:   "field",
			model: "sale.order",
			ref:   "x_studio_total",
			expected: []string{
				"field.sale.order.x_studio_total",
				"field.sale_order.x_studio_total",
			},
		},
		{
			name:  "underscored model adds dotted variant",
			typ:   "field",
			model: "sale_order",
			ref:   "x_studio_total",
			expected: []string{
				"field.sale_order.x_studio_total",
				"field.sale.order.x_studio_total",
			},
		},
		{
			name:     "plain model stays single",
			typ:      "view",
			model:    "partner",
			ref:      "kanban",
			expected: []string{"view.partner.kanban"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CandidateKeys(tt.typ, tt.model, tt.ref))
		})
	}
}
