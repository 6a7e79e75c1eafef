package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// newFindCmd lists the files that would be analysed, i.e. every file
// reached while associating the requested platforms' compile entries
// that the codebase's exclude rules do not drop.
func newFindCmd(out, errOut io.Writer) *cobra.Command {
	flags := &analysisFlags{}
	cmd := &cobra.Command{
		Use: "find <analysis-file>",
		Short: "List the files that would be analysed",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, aggregator, logFile, err := setupLogging(errOut)
			if err != nil {
				return err
			}
			defer logFile.Close()

			result, err := runAnalysis(args[0], flags, logger)
			if err != nil {
				return err
			}

			files := make([]string, 0, len(result.state.Trees()))
			for path := range result.state.Trees() {
				if result.codebase.Contains(path) {
					files = append(files, path)
				}
			}
			sort.Strings(files)
			for _, f := range files {
				fmt.Fprintln(out, f)
			}

			aggregator.Warn(logger)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
