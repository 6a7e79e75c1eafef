// Include path handling for the C preprocessor.
package cpp

import (
	"fmt"
	"os"
	"path/filepath"
)

// IncludeResolver resolves #include targets against a Platform's ordered
// include-path list, with a requested-path-keyed cache, and tracks the
// include stack for circular-include detection. Compiler-flavour
// system-path auto-detection (querying a real compiler binary for its
// default search paths) is deliberately left out: a Platform here
// carries its own explicit include_paths list rather than guessing the
// host toolchain's.
type IncludeResolver struct {
	Paths []string // Platform include_paths, in insertion order

	cache map[string]string
	includeStack []string
}

// NewIncludeResolver creates a new, empty include resolver.
func NewIncludeResolver() *IncludeResolver {
	return &IncludeResolver{cache: make(map[string]string)}
}

// AddPath appends an include-search directory, preserving insertion order.
func (r *IncludeResolver) AddPath(path string) {
	r.Paths = append(r.Paths, path)
}

// MaxIncludeDepth is the maximum allowed include nesting.
const MaxIncludeDepth = 200

// Resolve finds the file for a #include directive:
// non-system include first tries includingDir/requestedPath, then each
// Platform include path in order; the first existing regular file (after
// resolving symlinks) wins. Lookups are cached by requestedPath alone.
func (r *IncludeResolver) Resolve(requestedPath string, system bool, includingDir string) (string, error) {
	if cached, ok := r.cache[requestedPath]; ok {
		if cached == "" {
			return "", &IncludeNotFoundError{Filename: requestedPath, System: system}
		}
		return cached, nil
	}

	var candidates []string
	if !system && includingDir != "" {
		candidates = append(candidates, filepath.Join(includingDir, requestedPath))
	}
	for _, dir := range r.Paths {
		candidates = append(candidates, filepath.Join(dir, requestedPath))
	}

	for _, candidate := range candidates {
		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(resolved)
		if err != nil || info.IsDir() {
			continue
		}
		r.cache[requestedPath] = resolved
		return resolved, nil
	}

	r.cache[requestedPath] = ""
	return "", &IncludeNotFoundError{Filename: requestedPath, System: system}
}

// PushFile marks path as being included, pushing it onto the include
// stack. Returns a *CircularIncludeError if path is already on the stack,
// or an error if MaxIncludeDepth files are already on it.
func (r *IncludeResolver) PushFile(path string) error {
	if len(r.includeStack) >= MaxIncludeDepth {
		return fmt.Errorf("include nesting exceeds %d levels: %s", MaxIncludeDepth, path)
	}
	for _, f := range r.includeStack {
		if f == path {
			stack := append(append([]string{}, r.includeStack...), path)
			return &CircularIncludeError{Path: path, Stack: stack}
		}
	}
	r.includeStack = append(r.includeStack, path)
	return nil
}

// PopFile removes the most recently pushed file from the include stack.
func (r *IncludeResolver) PopFile() {
	if len(r.includeStack) > 0 {
		r.includeStack = r.includeStack[:len(r.includeStack)-1]
	}
}

// IncludeDepth returns the current include nesting depth.
func (r *IncludeResolver) IncludeDepth() int { return len(r.includeStack) }

// IncludeStack returns the current include stack, deepest-last.
func (r *IncludeResolver) IncludeStack() []string { return r.includeStack }
