// SPDX-License-Identifier: AGPL-3.0-or-later

package complexity

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions defines criteria for collecting analyzable source files.
type ScanOptions struct {
	// ExcludeDirs is a list of directory names to skip.
	// Matching is segment-aware: "tests" excludes "tests/foo" and
	// "module/tests/bar", but not "tests_extra/foo".
	ExcludeDirs []string

	// IncludeExtensions limits results to the given extensions (e.g. ".py").
	// If empty, every supported analyzer extension is included.
	IncludeExtensions []string
}

// DefaultExcludeDirs returns directories that never hold customization
// source worth analyzing.
func DefaultExcludeDirs() []string {
	return []string{
		".git",
		"__pycache__",
		"node_modules",
		"static",
		"tests",
		"migrations",
	}
}

// ScanSourceDir walks an Odoo module source tree and returns the files the
// analyzer understands, sorted deterministically.
func ScanSourceDir(root string, opts ScanOptions) ([]string, error) {
	exts := opts.IncludeExtensions
	if len(exts) == 0 {
		exts = supportedExtensions()
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedSegment(d.Name(), opts.ExcludeDirs) {
				return fs.SkipDir
			}
			return nil
		}
		if hasExtension(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func excludedSegment(name string, excludes []string) bool {
	for _, e := range excludes {
		if name == e {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
