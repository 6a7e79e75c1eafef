// Shared plumbing for cmd/cbigo's subcommands: load the analysis
// file, resolve each platform's compile database, associate every file,
// then fold the result into a Setmap via the codebase's exclusion rules.
package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codebasin/cbigo/pkg/codebase"
	"github.com/codebasin/cbigo/pkg/config"
	"github.com/codebasin/cbigo/pkg/cpp"
	"github.com/codebasin/cbigo/pkg/preproc"
)

// analysisFlags holds the -x/-p flags shared by every subcommand that
// takes an analysis file: "-x"/"--exclude" and "-p"/"--platform" (both
// repeatable).
type analysisFlags struct {
	excludes []string
	platforms []string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.excludes, "exclude", "x", nil, "exclude files matching this pattern (may be repeated)")
	cmd.Flags().StringArrayVarP(&f.platforms, "platform", "p", nil, "restrict analysis to this platform (may be repeated; default: all)")
}

// analysisResult is everything a subcommand needs after a run: the
// decoded analysis file, the codebase used to filter it, the parsed
// and associated trees, and the resulting Setmap.
type analysisResult struct {
	analysis *config.Analysis
	codebase *codebase.CodeBase
	state *preproc.ParserState
	setmap cpp.Setmap
}

// runAnalysis loads analysisFile, associates every selected platform's
// compile entries, and maps the result into a Setmap filtered by the
// codebase's root directory and exclude patterns (the analysis file's
// own "codebase.exclude" merged with any -x flags, per tree.py's
// "args.excludes += analysis_toml['codebase']['exclude']").
func runAnalysis(analysisFile string, flags *analysisFlags, logger *slog.Logger) (*analysisResult, error) {
	analysis, err := config.Load(analysisFile)
	if err != nil {
		return nil, err
	}

	selected, err := analysis.SelectedPlatforms(flags.platforms)
	if err != nil {
		return nil, err
	}

	analysisDir := filepath.Dir(analysisFile)
	state, err := preproc.Run(analysisDir, analysis, selected, logger)
	if err != nil {
		return nil, err
	}

	excludes := make([]string, 0, len(analysis.Codebase.Exclude)+len(flags.excludes))
	excludes = append(excludes, analysis.Codebase.Exclude...)
	excludes = append(excludes, flags.excludes...)
	cb := codebase.New([]string{analysisDir}, excludes, nil)

	setmap := cpp.MapPlatformsFunc(state.Trees(), cb.ExcludeFunc())

	return &analysisResult{analysis: analysis, codebase: cb, state: state, setmap: setmap}, nil
}
