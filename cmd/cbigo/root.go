// cbigo simulates the C/C++/Fortran preprocessor across every platform
// named in an analysis file and reports which source lines are shared,
// divergent, or unreachable under each platform's configuration.
//
// The command tree follows a newRootCmd(out, errOut io.Writer) factory
// for testability, cobra.Command with SilenceUsage/SilenceErrors so
// errors are printed exactly once by run(), and pflag-backed flags
// bound directly to package-level subcommand constructors.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cbigo: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "cbigo",
		Short: "cbigo attributes source lines to the platforms that build them",
		Long: `cbigo simulates the C/C++/Fortran preprocessor across every platform
in an analysis file, associating each line of source with the set of
platforms under which it is reachable, then reports how much of the
codebase is shared versus platform-specific.`,
		Version: version,
		SilenceUsage: true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.AddCommand(newFindCmd(out, errOut))
	rootCmd.AddCommand(newTreeCmd(out, errOut))
	rootCmd.AddCommand(newCovCmd(out, errOut))
	rootCmd.AddCommand(newReportCmd(out, errOut))

	return rootCmd
}
