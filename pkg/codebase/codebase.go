// Package codebase implements the CodeBase source-file filter:
// which files on disk count as part of the analysis, given one or more
// root directories, a set of gitignore-style exclude patterns, and an
// optional explicit file list. Exclude patterns are matched as
// doublestar globs against the root-relative path; gitignore negation
// ("!pattern") and directory-only ("dir/") rules are not supported.
package codebase

import (
	"path/filepath"
	"strings"

	"github.com/codebasin/cbigo/pkg/cpp"
)

// CodeBase describes which files belong to one analysis run.
type CodeBase struct {
	RootDirs []string
	ExcludePatterns []string
	Files map[string]bool // explicit_files: always included even if outside every root
	ExcludeFiles map[string]bool
}

// New builds a CodeBase from absolute root directories, gitignore-style
// exclude patterns, and an optional explicit file list.
func New(rootDirs, excludePatterns, explicitFiles []string) *CodeBase {
	files := make(map[string]bool, len(explicitFiles))
	for _, f := range explicitFiles {
		files[filepath.Clean(f)] = true
	}
	return &CodeBase{
		RootDirs: rootDirs,
		ExcludePatterns: excludePatterns,
		Files: files,
		ExcludeFiles: make(map[string]bool),
	}
}

// Contains reports whether path is part of this codebase: not excluded,
// and either under one of RootDirs or explicitly listed in Files.
func (c *CodeBase) Contains(path string) bool {
	return !c.Exclude(path)
}

// Exclude reports whether path should be left out of this codebase,
// delegating the single-root decision to cpp.ExcludeSpec for whichever
// root (if any) contains path.
func (c *CodeBase) Exclude(path string) bool {
	path = filepath.Clean(path)
	if c.ExcludeFiles[path] {
		return true
	}
	root := c.rootFor(path)
	if root == "" {
		return !c.Files[path]
	}
	spec := &cpp.ExcludeSpec{
		RootDir: root,
		Files: c.Files,
		ExcludeFiles: c.ExcludeFiles,
		ExcludePatterns: c.ExcludePatterns,
	}
	return spec.Exclude(path)
}

// rootFor returns the RootDirs entry containing path, or "" if none
// does (Exclude then keeps path only if it is listed in Files).
func (c *CodeBase) rootFor(path string) string {
	for _, root := range c.RootDirs {
		root = filepath.Clean(root)
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

// ExcludeFunc adapts Exclude to the predicate shape cpp.MapPlatformsFunc
// expects.
func (c *CodeBase) ExcludeFunc() func(string) bool {
	return c.Exclude
}
