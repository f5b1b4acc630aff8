// Package main provides the command line client of the replay service:
// checkpoint extraction, seek inspection and stream watching.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "replayctl",
		Short:         "Extract agent timelines and inspect simulation replays",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd())
	root.AddCommand(newSeekCmd())
	root.AddCommand(newWatchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "replayctl: %v\n", err)
		os.Exit(1)
	}
}
