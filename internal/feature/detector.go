// SPDX-License-Identifier: AGPL-3.0-or-later

package feature

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odoosync/odoosync/internal/component"
)

// Feature is a logical grouping of related components.
type Feature struct {
	Name           string
	Description    string
	Components     []*component.Component
	AffectedModels map[string]bool
}

// Mapping configures how components map to features.
type Mapping struct {
	Features         map[string]FeatureConfig `yaml:"features"`
	UnmappedHandling string                   `yaml:"unmapped_handling"`
}

// FeatureConfig declares one feature and the name patterns that claim
// components for it.
type FeatureConfig struct {
	Description string   `yaml:"description"`
	Patterns    []string `yaml:"patterns"`
}

// LoadMapping reads a feature-mapping.yaml file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature mapping: %w", err)
	}
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing feature mapping: %w", err)
	}
	if m.UnmappedHandling == "" {
		m.UnmappedHandling = "group_by_model"
	}
	return &m, nil
}

// DefaultMapping groups every component by model.
func DefaultMapping() *Mapping {
	return &Mapping{UnmappedHandling: "group_by_model"}
}

// Detector assigns components to features.
type Detector struct {
	mapping  *Mapping
	matchers map[string]*Matcher
	order    []string
}

// NewDetector builds a detector from a mapping configuration.
func NewDetector(mapping *Mapping) *Detector {
	d := &Detector{
		mapping:  mapping,
		matchers: make(map[string]*Matcher),
	}
	for name, cfg := range mapping.Features {
		if len(cfg.Patterns) > 0 {
			d.matchers[name] = NewMatcher(cfg.Patterns)
			d.order = append(d.order, name)
		}
	}
	sort.Strings(d.order)
	return d
}

// Detect groups a component pool into features. Components matching no
// pattern fall back to per-model features when unmapped_handling is
// group_by_model.
func (d *Detector) Detect(pool []*component.Component) []*Feature {
	byName := make(map[string]*Feature)
	var order []string
	var unmapped []*component.Component

	add := func(name, description string, c *component.Component) {
		f := byName[name]
		if f == nil {
			f = &Feature{Name: name, Description: description, AffectedModels: make(map[string]bool)}
			byName[name] = f
			order = append(order, name)
		}
		f.Components = append(f.Components, c)
		if c.Model != "" {
			f.AffectedModels[c.Model] = true
		}
	}

	for _, c := range pool {
		if name, ok := d.match(c); ok {
			add(name, d.mapping.Features[name].Description, c)
		} else {
			unmapped = append(unmapped, c)
		}
	}

	if d.mapping.UnmappedHandling == "group_by_model" {
		for _, c := range unmapped {
			model := c.Model
			if model == "" {
				model = "unknown"
			}
			add(modelFeatureName(model), fmt.Sprintf("Customizations for %s", model), c)
		}
	}

	features := make([]*Feature, 0, len(order))
	for _, name := range order {
		features = append(features, byName[name])
	}
	return features
}

func (d *Detector) match(c *component.Component) (string, bool) {
	for _, name := range d.order {
		if d.matchers[name].Matches(c.Name) {
			return name, true
		}
	}
	return "", false
}

// modelDisplayNames translates common Odoo model technical names to the
// labels users see in the UI.
var modelDisplayNames = map[string]string{
	"sale.order":          "Sales Order",
	"sale.order.line":     "Sales Order Line",
	"purchase.order":      "Purchase Order",
	"purchase.order.line": "Purchase Order Line",
	"res.partner":         "Contact",
	"res.users":           "User",
	"res.company":         "Company",
	"product.product":     "Product",
	"product.template":    "Product Template",
	"stock.picking":       "Inventory Transfer",
	"stock.move":          "Stock Move",
	"stock.quant":         "Stock Quant",
	"account.move":        "Journal Entry",
	"account.move.line":   "Journal Item",
	"account.payment":     "Payment",
	"mrp.production":      "Manufacturing Order",
	"mrp.bom":             "Bill of Materials",
	"project.project":     "Project",
	"project.task":        "Project Task",
	"hr.employee":         "Employee",
	"crm.lead":            "Lead/Opportunity",
	"helpdesk.ticket":     "Helpdesk Ticket",
}

func modelFeatureName(model string) string {
	display := modelDisplayNames[model]
	if display == "" {
		words := strings.Fields(strings.ReplaceAll(model, ".", " "))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		display = strings.Join(words, " ")
	}
	return display + " Customizations"
}
