// Package compiledb ingests a compile_commands.json compilation
// database and converts each record into a cpp.CompileEntry.
// compile_commands.json is a plain JSON array, so the standard
// library's encoding/json is the right tool here; no third-party
// library would add anything for a format this simple.
package compiledb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/codebasin/cbigo/pkg/cpp"
)

// Entry is one record of compile_commands.json, per the Clang compile
// database format: either Command (a single shell command line) or
// Arguments (a pre-split argv) is present.
type Entry struct {
	Directory string `json:"directory"`
	Command string `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	File string `json:"file"`
}

// Load reads and decodes the compile database at path.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compile database %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing compile database %s: %w", path, err)
	}
	return entries, nil
}

// ToCompileEntry converts one compile database record into a
// cpp.CompileEntry by scanning its argument list for -D, -U, -I, and
// -include. File paths are made absolute against
// Directory, matching a real compiler's working-directory semantics.
func (e Entry) ToCompileEntry() (cpp.CompileEntry, error) {
	args := e.Arguments
	if len(args) == 0 {
		parsed, err := shellwords.Parse(e.Command)
		if err != nil {
			return cpp.CompileEntry{}, fmt.Errorf("parsing command for %s: %w", e.File, err)
		}
		args = parsed
	}

	out := cpp.CompileEntry{File: resolvePath(e.Directory, e.File)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "-D") && len(arg) > 2:
			out.Defines = append(out.Defines, arg[2:])
		case arg == "-D" && i+1 < len(args):
			i++
			out.Defines = append(out.Defines, args[i])
		case strings.HasPrefix(arg, "-U") && len(arg) > 2:
			out.Undefines = append(out.Undefines, arg[2:])
		case arg == "-U" && i+1 < len(args):
			i++
			out.Undefines = append(out.Undefines, args[i])
		case strings.HasPrefix(arg, "-I") && len(arg) > 2:
			out.IncludePaths = append(out.IncludePaths, resolvePath(e.Directory, arg[2:]))
		case arg == "-I" && i+1 < len(args):
			i++
			out.IncludePaths = append(out.IncludePaths, resolvePath(e.Directory, args[i]))
		case arg == "-include" && i+1 < len(args):
			i++
			out.ForceInclude = append(out.ForceInclude, resolvePath(e.Directory, args[i]))
		}
	}
	return out, nil
}

func resolvePath(directory, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(directory, path))
}
