// Package commands implements the CLI commands for planar.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/planar/internal/app"
	"go.trai.ch/planar/internal/build"
)

// CLI represents the command line interface for planar.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	global  app.GlobalOptions
}

// Application represents the application logic interface.
type Application interface {
	Check(ctx context.Context, paths []string, opts app.CheckOptions) error
	Serve(ctx context.Context, opts app.ServeOptions) error
	Watch(ctx context.Context, dir string, opts app.WatchOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "planar",
		Short:         "Batch planarity testing with Kuratowski witnesses",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	// Registered before the version flag so -v stays with --verbose.
	rootCmd.PersistentFlags().StringVarP(&c.global.ConfigFile, "config", "c", "", "Path to planar.yaml (default: discovered from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&c.global.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addPipelineFlags registers the flags shared by commands that run the pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the result cache")
	cmd.Flags().IntP("workers", "w", 0, "Number of compute workers (default: from config)")
	cmd.Flags().Duration("timeout", 0, "Per-graph deadline (default: from config)")
}

func (c *CLI) pipelineOptions(cmd *cobra.Command) app.PipelineOptions {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	workers, _ := cmd.Flags().GetInt("workers")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return app.PipelineOptions{
		GlobalOptions: c.global,
		NoCache:       noCache,
		Workers:       workers,
		Timeout:       timeout,
	}
}
