package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codebasin/cbigo/pkg/report"
)

// newReportCmd prints the divergence/utilization summary
// (report.Summary(setmap)). A clustering/dendrogram report is not
// offered: rendering one would need a plotting dependency this
// repository does not carry.
func newReportCmd(out, errOut io.Writer) *cobra.Command {
	flags := &analysisFlags{}
	cmd := &cobra.Command{
		Use: "report <analysis-file>",
		Short: "Print the code divergence/utilization summary",
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

			fmt.Fprintln(out, report.Summary(result.setmap))

			aggregator.Warn(logger)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
