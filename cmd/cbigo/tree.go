package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codebasin/cbigo/pkg/cpp"
)

// newTreeCmd dumps every analysed file's source tree, marking each code
// and directive node with the set of platforms under which it is live.
// The line-range + platform-set rendering is driven directly from
// Node.Platforms.
func newTreeCmd(out, errOut io.Writer) *cobra.Command {
	flags := &analysisFlags{}
	cmd := &cobra.Command{
		Use: "tree <analysis-file>",
		Short: "Dump each file's source tree with per-platform association markers",
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

			trees := result.state.Trees()
			paths := make([]string, 0, len(trees))
			for path := range trees {
				if result.codebase.Contains(path) {
					paths = append(paths, path)
				}
			}
			sort.Strings(paths)

			for _, path := range paths {
				fmt.Fprintf(out, "== %s ==\n", path)
				tree := trees[path]
				printNode(out, tree, tree.Root, 0)
			}

			aggregator.Warn(logger)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printNode(out io.Writer, tree *cpp.Tree, h cpp.NodeHandle, depth int) {
	node := tree.Node(h)
	childDepth := depth

	if node.Kind != cpp.NodeFile {
		kind := "code"
		if node.Kind == cpp.NodeDirective {
			kind = "directive"
		}
		platforms := "-"
		if len(node.Platforms) > 0 {
			platforms = strings.Join(node.Platforms, ",")
		}
		fmt.Fprintf(out, "%s%d-%d [%s] %s\n", strings.Repeat(" ", depth), node.PhysicalStart, node.PhysicalEnd, platforms, kind)
		childDepth++
	}

	for _, child := range node.Children {
		printNode(out, tree, child, childDepth)
	}
}
