package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/repograde/repograde/internal/adapters/inbound/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the repograde MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start repograde MCP server (stdio)",
		Long: "Start the repograde MCP server using stdio transport. This lets AI coding assistants run analyzers, " +
			"dynamic tests and workflow commits against GitHub repositories.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			analyze, err := a.analyzeService("")
			if err != nil {
				return err
			}
			svc := mcpadapter.Services{Analyze: analyze}
			if svc.Dynamic, err = a.dynamicService("", true); err != nil {
				// Analyzers still work without a model.
				a.logger.Warn().Err(err).Msg("dynamic testing disabled")
				svc.DynamicErr = err
			}

			return server.ServeStdio(mcpadapter.NewServer(svc, version))
		},
	}
	return cmd
}
