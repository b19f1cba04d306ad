// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feature groups extracted components into logical features using
// configured name patterns, with a group-by-model fallback for everything
// the patterns miss.
package feature

import (
	"path"
	"regexp"
	"strings"
)

// Matcher matches component names against a set of patterns.
//
// Pattern kinds:
//   - [tag]... : tag-prefix patterns, matched as a case-insensitive regexp
//     so the brackets are literal rather than a glob character class
//   - anything else: shell-style glob, case-folded
type Matcher struct {
	globs []string
	tags  []*regexp.Regexp
}

// NewMatcher compiles the given patterns.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if end := strings.Index(p, "]"); strings.HasPrefix(p, "[") && end > 0 {
			tag := p[1:end]
			m.tags = append(m.tags, regexp.MustCompile(`(?i)^\[`+regexp.QuoteMeta(tag)+`\]`))
			continue
		}
		m.globs = append(m.globs, strings.ToLower(p))
	}
	return m
}

// Matches reports whether the component name matches any pattern.
func (m *Matcher) Matches(name string) bool {
	for _, re := range m.tags {
		if re.MatchString(name) {
			return true
		}
	}
	lower := strings.ToLower(name)
	for _, g := range m.globs {
		if ok, err := path.Match(g, lower); err == nil && ok {
			return true
		}
	}
	return false
}
