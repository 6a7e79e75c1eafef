package cpp

// Platform is the per-platform mutable state threaded through one
// analysis pass: its own macro table, include search path, and the set
// of files it has already processed under "#pragma once". Macro storage
// delegates to MacroTable (which already implements first-define-wins
// with a conflict check) and include search to IncludeResolver, rather
// than keeping its own parallel dict/list pair.
type Platform struct {
	Name string
	RootDir string

	Macros *MacroTable
	Includes *IncludeResolver

	onceSeen map[string]bool
}

// NewPlatform creates a platform named name, rooted at rootDir, with an
// empty macro table and include resolver.
func NewPlatform(name, rootDir string) *Platform {
	return &Platform{
		Name: name,
		RootDir: rootDir,
		Macros: NewMacroTable(),
		Includes: NewIncludeResolver(),
		onceSeen: make(map[string]bool),
	}
}

// AddIncludePath appends dir to this platform's include search path.
func (p *Platform) AddIncludePath(dir string) {
	p.Includes.AddPath(dir)
}

// Define defines identifier for this platform, per first-define-wins
// (see MacroTable.define). A conflicting redefinition returns an error
// the caller should surface as a warning, not a fatal failure.
func (p *Platform) Define(m *Macro) error {
	return p.Macros.define(m)
}

// Undefine removes identifier's definition for this platform, a no-op if
// it was never defined.
func (p *Platform) Undefine(identifier string) {
	p.Macros.Undefine(identifier)
}

// IsDefined reports whether identifier has an active definition on this
// platform.
func (p *Platform) IsDefined(identifier string) bool {
	return p.Macros.IsDefined(identifier)
}

// MarkIncludeOnce records that path's contents must not be processed
// again for this platform, implementing "#pragma once".
func (p *Platform) MarkIncludeOnce(path string) {
	p.onceSeen[path] = true
}

// ShouldProcessInclude reports whether path's contents still need
// associating for this platform: false once MarkIncludeOnce(path) has
// been called.
func (p *Platform) ShouldProcessInclude(path string) bool {
	return !p.onceSeen[path]
}

// ResolveInclude resolves a #include target against this platform's
// search path, preferring includingDir first for non-system includes.
func (p *Platform) ResolveInclude(requestedPath string, system bool, includingDir string) (string, error) {
	return p.Includes.Resolve(requestedPath, system, includingDir)
}
