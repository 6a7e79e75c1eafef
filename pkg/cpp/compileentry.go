package cpp

// CompileEntry is one source file's preprocessing inputs under one
// platform: the core's view of a compile database
// record after `-D`/`-U`/`-I`/`-include` have been pulled out of its
// command line. Forced includes are associated before File itself, so
// their macro definitions are already live when File's analysis begins.
type CompileEntry struct {
	File string
	Defines []string // "NAME" or "NAME=EXPR", in command-line order
	Undefines []string
	IncludePaths []string // ordered -I directories
	ForceInclude []string // ordered -include files
}

// ApplyTo pushes e's defines/undefines/include paths onto platform,
// at the given location (normally the compile entry's originating
// compile-commands.json record).
func (e *CompileEntry) ApplyTo(platform *Platform, at SourceLoc) error {
	for _, dir := range e.IncludePaths {
		platform.AddIncludePath(dir)
	}
	return platform.Macros.ApplyCmdlineDefines(e.Defines, e.Undefines, at)
}
