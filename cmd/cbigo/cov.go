package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/codebasin/cbigo/pkg/report"
)

// newCovCmd prints the raw Setmap as a coverage table: one row per
// distinct platform set observed, with its SLOC count, at the
// platform-set granularity report.Table supports.
func newCovCmd(out, errOut io.Writer) *cobra.Command {
	flags := &analysisFlags{}
	cmd := &cobra.Command{
		Use: "cov <analysis-file>",
		Short: "Print the Setmap as a per-platform-set coverage table",
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

			keys := make([]string, 0, len(result.setmap))
			for key := range result.setmap {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				name := key
				if name == "" {
					name = "(unreached)"
				}
				rows = append(rows, []string{"{" + name + "}", fmt.Sprintf("%d", result.setmap[key])})
			}
			fmt.Fprintln(out, report.Table([]string{"Platform Set", "LOC"}, rows))

			aggregator.Warn(logger)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
