package cpp

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Setmap maps a canonical platform-set key (see SetKey) to the total
// SLOC associated with exactly that set of platforms, the input to the
// divergence/utilization/coverage reports.
type Setmap map[string]int

// SetKey canonicalizes a platform slice into a Setmap key. Node.Platforms
// is already sorted and duplicate-free (see Node.AddPlatform), so a plain
// join is a valid stand-in for set identity.
func SetKey(platforms []string) string {
	return strings.Join(platforms, ",")
}

// ExcludeSpec decides which files are left out of a platform mapping:
// explicit exclude_files always wins; files outside RootDir are excluded
// unless explicitly listed in Files; otherwise ExcludePatterns are
// matched gitignore-style (via doublestar) against the path relative to
// RootDir.
type ExcludeSpec struct {
	RootDir string
	Files map[string]bool
	ExcludeFiles map[string]bool
	ExcludePatterns []string
}

// Exclude reports whether filename should be left out of a platform
// mapping.
func (s *ExcludeSpec) Exclude(filename string) bool {
	if s.ExcludeFiles[filename] {
		return true
	}
	rootPrefix := strings.TrimSuffix(s.RootDir, string(filepath.Separator)) + string(filepath.Separator)
	if s.RootDir != "" && filename != s.RootDir && !strings.HasPrefix(filename, rootPrefix) {
		return !s.Files[filename]
	}
	if len(s.ExcludePatterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(s.RootDir, filename)
	if err != nil {
		rel = filename
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.ExcludePatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// MapPlatforms walks every tree in trees (keyed by absolute filename),
// skipping files spec excludes, and accumulates every CodeNode and
// DirectiveNode's LocalSLOC into the Setmap bucket for the platform set
// it was associated with. A nil spec excludes nothing.
func MapPlatforms(trees map[string]*Tree, spec *ExcludeSpec) Setmap {
	var exclude func(string) bool
	if spec != nil {
		exclude = spec.Exclude
	}
	return MapPlatformsFunc(trees, exclude)
}

// MapPlatformsFunc is MapPlatforms generalised to an arbitrary exclusion
// predicate, for callers (e.g. a multi-root codebase) whose exclusion
// logic doesn't reduce to a single ExcludeSpec. A nil exclude excludes
// nothing.
func MapPlatformsFunc(trees map[string]*Tree, exclude func(filename string) bool) Setmap {
	sm := make(Setmap)
	for filename, tree := range trees {
		if exclude != nil && exclude(filename) {
			continue
		}
		mapNode(tree, tree.Root, sm)
	}
	return sm
}

func mapNode(tree *Tree, h NodeHandle, sm Setmap) {
	node := tree.Node(h)
	if node.Kind == NodeCode || node.Kind == NodeDirective {
		sm[SetKey(node.Platforms)] += node.LocalSLOC
	}
	for _, child := range node.Children {
		mapNode(tree, child, sm)
	}
}
