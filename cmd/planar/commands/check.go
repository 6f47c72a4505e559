package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/planar/internal/app"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Test graphs for planarity",
		Long: "Test graphs for planarity. Each file holds one edge list per line unless\n" +
			"--whole-file is set. Directories are searched for *.edges files; '-' or no\n" +
			"arguments read from stdin.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wholeFile, _ := cmd.Flags().GetBool("whole-file")
			asJSON, _ := cmd.Flags().GetBool("json")

			return c.app.Check(cmd.Context(), args, app.CheckOptions{
				PipelineOptions: c.pipelineOptions(cmd),
				WholeFile:       wholeFile,
				JSON:            asJSON,
			})
		},
	}
	addPipelineFlags(cmd)
	cmd.Flags().Bool("whole-file", false, "Treat each file as a single graph")
	cmd.Flags().Bool("json", false, "Print records as NDJSON")
	return cmd
}
