// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Odoosync - Odoosync extracts Studio customizations from an Odoo instance,
groups them into features and user stories, estimates implementation effort,
and mirrors the result as project tasks in a second Odoo instance.

Copyright (C) 2025  The Odoosync Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package component defines the model for a single extracted Odoo
// customization and loads extraction output files into component pools.
package component

import (
	"fmt"
	"strings"
)

// Type identifies the kind of Odoo customization a component represents.
type Type string

const (
	TypeField        Type = "field"
	TypeView         Type = "view"
	TypeServerAction Type = "server_action"
	TypeAutomation   Type = "automation"
	TypeReport       Type = "report"
)

// typeAliases maps reference spellings to canonical types. "cron" and
// "action" appear in hand-written mapping documents.
var typeAliases = map[string]Type{
	"field":         TypeField,
	"view":          TypeView,
	"server_action": TypeServerAction,
	"automation":    TypeAutomation,
	"report":        TypeReport,
	"cron":          TypeAutomation,
	"action":        TypeServerAction,
}

// ParseType resolves a type string (including aliases) to a canonical Type.
func ParseType(s string) (Type, error) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown component type %q", s)
	}
	return t, nil
}

// Label returns the human-readable name for the type.
func (t Type) Label() string {
	switch t {
	case TypeField:
		return "Field"
	case TypeView:
		return "View"
	case TypeServerAction:
		return "Server Action"
	case TypeAutomation:
		return "Automation"
	case TypeReport:
		return "Report"
	}
	return string(t)
}

// Complexity labels, coarsest to finest grained work.
const (
	ComplexitySimple      = "simple"
	ComplexityMedium      = "medium"
	ComplexityComplex     = "complex"
	ComplexityVeryComplex = "very_complex"
)

// Component is one discovered Odoo customization. Components are created
// once per extraction run and are read-only afterwards.
type Component struct {
	ID          int
	Name        string
	DisplayName string
	Type        Type
	Model       string // dotted Odoo model, may be empty or a generic placeholder
	Complexity  string
	FilePath    string // source file the component was extracted from, if any
	IsStudio    bool
	Raw         map[string]any
}

// TypeLabel returns the human-readable label for the component's type.
func (c *Component) TypeLabel() string { return c.Type.Label() }

// Ref returns the canonical type.model.name reference for the component.
// Components without a model use the legacy type.name form.
func (c *Component) Ref() string {
	if c.Model != "" {
		return fmt.Sprintf("%s.%s.%s", c.Type, strings.ReplaceAll(c.Model, ".", "_"), c.Name)
	}
	return fmt.Sprintf("%s.%s", c.Type, c.Name)
}

// Generic placeholder models signal that the true target model could not be
// determined from source.
var genericModels = map[string]bool{
	"ir.actions.server": true,
	"ir_actions_server": true,
	"base.automation":   true,
	"base_automation":   true,
}

// HasGenericModel reports whether the component's model is a placeholder
// rather than a real target model.
func (c *Component) HasGenericModel() bool {
	m := strings.ToLower(c.Model)
	return genericModels[m] || genericModels[strings.ReplaceAll(m, ".", "_")]
}
