// Package preproc is the top-level orchestrator: for each platform, for
// each compile-command entry, it applies the entry's flags and
// associates the resulting tree, fanning the outer loop out across
// goroutines and building a tree/associator/mapper pipeline rather than
// a single linear preprocess-to-text pass.
package preproc

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/codebasin/cbigo/pkg/compiledb"
	"github.com/codebasin/cbigo/pkg/config"
	"github.com/codebasin/cbigo/pkg/cpp"
)

// Run loads each selected platform's compile database (resolved relative
// to analysisDir) and associates every compile entry's source tree under
// a fresh per-entry cpp.Platform: Platform.definitions,
// include_paths, and include_once_set are scoped to a single
// associator invocation, one Platform per translation unit, not
// shared across a named platform's entries. The outer (platform,
// compile-entry) loop runs on an errgroup bounded by GOMAXPROCS; a single
// entry's failure is reported as a warning and does not abort the run.
func Run(analysisDir string, analysis *config.Analysis, selectedPlatforms []string, logger *slog.Logger) (*ParserState, error) {
	state := NewParserState(logger)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, name := range selectedPlatforms {
		spec, ok := analysis.Platform[name]
		if !ok {
			return nil, fmt.Errorf("platform %q is not defined in the analysis file", name)
		}

		commandsPath := resolveAgainst(analysisDir, spec.Commands)
		entries, err := compiledb.Load(commandsPath)
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", name, err)
		}

		for _, e := range entries {
			ce, err := e.ToCompileEntry()
			if err != nil {
				logger.Warn(err.Error())
				continue
			}
			platformName := name
			g.Go(func() error {
				processEntry(state, logger, platformName, analysisDir, ce)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// processEntry builds a fresh Platform for one (platform, compile-entry)
// tuple, applies the entry's command-line defines/undefines/include
// paths, associates every forced include ahead of the main file (so
// their macro side effects are live before it begins), then associates
// the main file itself.
func processEntry(state *ParserState, logger *slog.Logger, platformName, analysisDir string, entry cpp.CompileEntry) {
	platform := cpp.NewPlatform(platformName, analysisDir)
	at := cpp.SourceLoc{File: entry.File}
	if err := entry.ApplyTo(platform, at); err != nil {
		logger.Warn(err.Error())
	}

	for _, forced := range entry.ForceInclude {
		associateFile(state, logger, platform, forced)
	}
	associateFile(state, logger, platform, entry.File)
}

func associateFile(state *ParserState, logger *slog.Logger, platform *cpp.Platform, path string) {
	lang := languageOf(path)
	tree, err := state.IncludeTree(path, lang)
	if err != nil {
		logger.Warn(err.Error())
		return
	}
	state.AssociateFile(tree, lang, platform)
}

func resolveAgainst(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(dir, path))
}
