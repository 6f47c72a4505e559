package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/planar/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check edge-list files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			wholeFile, _ := cmd.Flags().GetBool("whole-file")
			asJSON, _ := cmd.Flags().GetBool("json")
			window, _ := cmd.Flags().GetDuration("debounce")

			return c.app.Watch(cmd.Context(), dir, app.WatchOptions{
				CheckOptions: app.CheckOptions{
					PipelineOptions: c.pipelineOptions(cmd),
					WholeFile:       wholeFile,
					JSON:            asJSON,
				},
				Window: window,
			})
		},
	}
	addPipelineFlags(cmd)
	cmd.Flags().Bool("whole-file", false, "Treat each file as a single graph")
	cmd.Flags().Bool("json", false, "Print records as NDJSON")
	cmd.Flags().Duration("debounce", 0, "Debounce window for file events (default 100ms)")
	return cmd
}
