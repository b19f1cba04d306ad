// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mapping loads the feature/user-story mapping document and builds
// user stories by resolving its component references against an extracted
// component pool.
package mapping

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Document is a parsed feature_user_story_map.toml. Feature and story
// ordering follows the declaration order in the file.
type Document struct {
	Features   map[string]*Feature
	Statistics map[string]any

	order []string
}

// Feature is one feature entry in the document.
type Feature struct {
	Description string
	Deprecated  bool
	Stories     []Story

	// DirectComponents records component references declared directly under
	// the feature. That layout is disallowed; validation reports it.
	DirectComponents []string

	// HadStoriesKey distinguishes an absent user_stories entry from an
	// empty one when producing validation warnings.
	HadStoriesKey bool
}

// Story is one user story entry with its declared component references, in
// declaration order.
type Story struct {
	Name        string
	Description string
	Refs        []string
}

// rawDocument mirrors the TOML shape before the user_stories union is
// resolved. user_stories is either a table of name -> story (current) or an
// array of stories (legacy), so it is deferred as a toml.Primitive.
type rawDocument struct {
	Features   map[string]rawFeature `toml:"features"`
	Statistics map[string]any        `toml:"statistics"`
}

type rawFeature struct {
	Description string         `toml:"description"`
	Deprecated  bool           `toml:"_deprecated"`
	Components  []any          `toml:"components"`
	UserStories toml.Primitive `toml:"user_stories"`
}

type rawStory struct {
	Description string `toml:"description"`
	Components  []any  `toml:"components"`
}

// Load reads and parses a mapping document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping document: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data into a Document, resolving the legacy-vs-named
// user_stories shapes into a single ordered list of named entries.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing mapping document: %w", err)
	}

	featureOrder, storyOrder := declarationOrder(md)

	doc := &Document{
		Features:   make(map[string]*Feature, len(raw.Features)),
		Statistics: raw.Statistics,
		order:      featureOrder,
	}

	for name, rf := range raw.Features {
		f := &Feature{
			Description:      rf.Description,
			Deprecated:       rf.Deprecated,
			DirectComponents: refStrings(rf.Components),
			HadStoriesKey:    md.IsDefined("features", name, "user_stories"),
		}
		if f.HadStoriesKey {
			stories, err := decodeStories(md, rf.UserStories, storyOrder[name])
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", name, err)
			}
			f.Stories = stories
		}
		doc.Features[name] = f
	}

	return doc, nil
}

// FeatureNames returns all feature names, deprecated ones excluded, in
// declaration order.
func (d *Document) FeatureNames() []string {
	var names []string
	for _, name := range d.order {
		if f := d.Features[name]; f != nil && !f.Deprecated {
			names = append(names, name)
		}
	}
	return names
}

// declarationOrder recovers feature and per-feature story ordering from the
// decoded key sequence, which follows the document text.
func declarationOrder(md toml.MetaData) (features []string, stories map[string][]string) {
	stories = make(map[string][]string)
	seen := make(map[string]bool)

	for _, key := range md.Keys() {
		if len(key) >= 2 && key[0] == "features" && !seen[key[1]] {
			seen[key[1]] = true
			features = append(features, key[1])
		}
		if len(key) == 4 && key[0] == "features" && key[2] == "user_stories" {
			stories[key[1]] = append(stories[key[1]], key[3])
		}
	}
	return features, stories
}

// decodeStories resolves the user_stories union. A table yields named
// stories in declaration order; a legacy array keeps file order and derives
// story names from descriptions. PrimitiveDecode into a concrete type does
// not reject mismatched shapes, so the shape is decided on an untyped
// decode first.
func decodeStories(md toml.MetaData, prim toml.Primitive, order []string) ([]Story, error) {
	var shape any
	if err := md.PrimitiveDecode(prim, &shape); err != nil {
		return nil, fmt.Errorf("decoding user_stories: %w", err)
	}

	switch shape.(type) {
	case map[string]any:
		var named map[string]rawStory
		if err := md.PrimitiveDecode(prim, &named); err != nil {
			return nil, fmt.Errorf("decoding user_stories table: %w", err)
		}
		stories := make([]Story, 0, len(named))
		for _, name := range order {
			rs, ok := named[name]
			if !ok {
				continue
			}
			desc := rs.Description
			if desc == "" {
				desc = name
			}
			stories = append(stories, Story{Name: name, Description: desc, Refs: refStrings(rs.Components)})
		}
		return stories, nil

	case []map[string]any, []any:
		var legacy []rawStory
		if err := md.PrimitiveDecode(prim, &legacy); err != nil {
			return nil, fmt.Errorf("decoding user_stories array: %w", err)
		}
		stories := make([]Story, 0, len(legacy))
		for i, rs := range legacy {
			name := rs.Description
			if name == "" {
				name = fmt.Sprintf("Story %d", i+1)
			}
			stories = append(stories, Story{Name: name, Description: name, Refs: refStrings(rs.Components)})
		}
		return stories, nil

	default:
		return nil, fmt.Errorf("user_stories must be a table of stories or an array, not %T", shape)
	}
}

// refStrings normalizes component entries: either bare reference strings or
// tables carrying a ref key. Anything else is dropped.
func refStrings(entries []any) []string {
	var refs []string
	for _, e := range entries {
		switch v := e.(type) {
		case string:
			if v != "" {
				refs = append(refs, v)
			}
		case map[string]any:
			if ref, _ := v["ref"].(string); ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}
