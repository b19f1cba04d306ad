// SPDX-License-Identifier: AGPL-3.0-or-later

package refs

import (
	"path/filepath"
	"strings"

	"github.com/odoosync/odoosync/internal/component"
)

// Resolve finds the component a reference points at, or nil when the
// reference cannot be resolved. Absence is a valid outcome: callers route
// unresolved references to review lists or "unassigned" buckets.
//
// Strategies are tried in strict order, returning the first match:
//  1. filename match (export filename conventions)
//  2. direct key equality over generated candidate keys
//  3. model+name match ignoring component type (recovers mislabeled types)
//  4. filename fallback tolerating generic placeholder models
func Resolve(ref string, pool []*component.Component) *component.Component {
	normalized := Normalize(ref)
	parsed := Parse(normalized)

	if c := matchByFilename(parsed, pool); c != nil {
		return c
	}
	if c := matchByKey(normalized, pool); c != nil {
		return c
	}

	// The remaining strategies re-split naively: the second segment is
	// assumed to be the model even if the name contains dots.
	parts := strings.Split(normalized, ".")
	if len(parts) < 3 {
		return nil
	}
	guess := Parsed{Type: parts[0], Model: parts[1], Name: strings.Join(parts[2:], ".")}

	if c := matchByModelAndName(guess, pool); c != nil {
		return c
	}
	return matchByFilenameFallback(guess, pool)
}

// matchByFilename compares the reference name in filename form against the
// recorded source filename of each component. Type must match; the model
// must be compatible, where an empty or generic placeholder model on the
// component counts as compatible because upstream extraction could not
// determine the true target model.
func matchByFilename(parsed Parsed, pool []*component.Component) *component.Component {
	wanted := FilenameForm(parsed.Name)
	if wanted == "" {
		return nil
	}

	for _, c := range pool {
		if c.FilePath == "" {
			continue
		}
		if strings.ToLower(stem(c.FilePath)) != wanted {
			continue
		}
		if string(c.Type) != parsed.Type {
			continue
		}
		if modelCompatible(c, parsed.Model) {
			return c
		}
	}
	return nil
}

func modelCompatible(c *component.Component, refModel string) bool {
	compModel := strings.ToLower(c.Model)
	return compModel == refModel ||
		strings.ReplaceAll(compModel, ".", "_") == refModel ||
		strings.ReplaceAll(compModel, "_", ".") == refModel ||
		compModel == "" ||
		c.HasGenericModel()
}

// matchByKey tests the normalized reference for literal equality against
// every candidate key of every component. Equality only: substring
// containment caused false positives historically and is deliberately
// excluded.
func matchByKey(normalized string, pool []*component.Component) *component.Component {
	for _, c := range pool {
		for _, key := range componentKeys(c) {
			if normalized == key {
				return c
			}
		}
	}
	return nil
}

// componentKeys generates every lowercased reference key a component can be
// addressed by: dot/underscore model variants crossed with name and
// display name.
func componentKeys(c *component.Component) []string {
	keys := CandidateKeys(string(c.Type), c.Model, c.Name)
	if c.DisplayName != "" && c.DisplayName != c.Name {
		keys = append(keys, CandidateKeys(string(c.Type), c.Model, c.DisplayName)...)
	}
	for i, k := range keys {
		keys[i] = strings.ToLower(k)
	}
	return keys
}

// matchByModelAndName compares model and name while ignoring the declared
// component type. Mapping documents sometimes label automations as
// server_actions; this strategy recovers those references.
func matchByModelAndName(guess Parsed, pool []*component.Component) *component.Component {
	for _, c := range pool {
		if !foldedModelMatches(c.Model, guess.Model) {
			continue
		}
		if strings.ToLower(c.Name) == guess.Name ||
			(c.DisplayName != "" && strings.ToLower(c.DisplayName) == guess.Name) {
			return c
		}
	}
	return nil
}

// foldedModelMatches compares models under dot/underscore folding.
func foldedModelMatches(compModel, refModel string) bool {
	if compModel == "" {
		return false
	}
	folded := strings.ToLower(strings.ReplaceAll(compModel, ".", "_"))
	folded = strings.ReplaceAll(folded, "_", ".")
	return folded == refModel ||
		strings.ReplaceAll(folded, ".", "_") == refModel ||
		strings.ReplaceAll(folded, "_", ".") == refModel
}

// matchByFilenameFallback is the last resort: type must match and the model
// must match or be a generic placeholder, then the reference name is
// compared in filename form against the source filename, the component
// name, and the display name.
func matchByFilenameFallback(guess Parsed, pool []*component.Component) *component.Component {
	wanted := FilenameForm(guess.Name)

	for _, c := range pool {
		if string(c.Type) != guess.Type {
			continue
		}
		if !foldedModelMatches(c.Model, guess.Model) && !c.HasGenericModel() {
			continue
		}

		if c.FilePath != "" && strings.ToLower(stem(c.FilePath)) == wanted {
			return c
		}
		if FilenameForm(c.Name) == wanted {
			return c
		}
		if c.DisplayName != "" && FilenameForm(c.DisplayName) == wanted {
			return c
		}
	}
	return nil
}

// stem returns the filename without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
