// SPDX-License-Identifier: AGPL-3.0-or-later

// Package refs normalizes and resolves component reference strings of the
// form type.model.name against a pool of extracted components.
package refs

import "strings"

// Normalize trims surrounding whitespace and lowercases a reference.
// Interior characters are preserved: brackets, parens, and punctuation are
// part of the component identity.
func Normalize(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

// Parsed is a reference split into its parts. Model may be empty when the
// reference uses the legacy type.name form.
type Parsed struct {
	Type  string
	Model string
	Name  string
}

// Parse splits a reference on dots, taking at most the first two segments
// as type and model. The remainder stays joined because component names may
// legitimately contain dots.
func Parse(ref string) Parsed {
	parts := strings.SplitN(ref, ".", 3)
	switch len(parts) {
	case 1:
		return Parsed{Type: parts[0]}
	case 2:
		return Parsed{Type: parts[0], Name: parts[1]}
	}
	return Parsed{Type: parts[0], Model: parts[1], Name: parts[2]}
}

// FilenameForm converts a component name to the form used by the upstream
// export tool when it writes source files: lowercase with spaces replaced
// by underscores. All other characters are preserved verbatim.
func FilenameForm(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// CandidateKeys returns the reference keys to try for a type/model/name
// combination. Mapping documents spell models with underscores while
// extraction output uses dots, so both foldings are emitted.
func CandidateKeys(typ, model, name string) []string {
	if model == "" {
		return []string{typ + "." + name}
	}

	keys := []string{typ + "." + model + "." + name}
	if underscore := strings.ReplaceAll(model, ".", "_"); underscore != model {
		keys = append(keys, typ+"."+underscore+"."+name)
	}
	if dotted := strings.ReplaceAll(model, "_", "."); dotted != model {
		keys = append(keys, typ+"."+dotted+"."+name)
	}
	return keys
}
