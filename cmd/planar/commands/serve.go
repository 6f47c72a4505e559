package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/planar/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the batch API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			jsonLog, _ := cmd.Flags().GetBool("log-json")

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				PipelineOptions: c.pipelineOptions(cmd),
				Addr:            addr,
				JSONLog:         jsonLog,
			})
		},
	}
	addPipelineFlags(cmd)
	cmd.Flags().StringP("addr", "a", "", "Listen address (default: from config)")
	cmd.Flags().Bool("log-json", false, "Write logs as JSON")
	return cmd
}
