package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "repograde",
		Short: "Grade the code quality of a GitHub repository",
		Long: "repograde runs code-quality tools against a GitHub repository, normalizes their findings " +
			"into a 0-100 score with a letter grade, and can generate an AI-assisted CI workflow and quality report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", ".", "Config file, or a directory containing .repograde.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format (console, json); overrides the config file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(&opts))
	cmd.AddCommand(newDynamicCmd(&opts))
	cmd.AddCommand(newCommitCmd(&opts))
	cmd.AddCommand(newWatchCmd(&opts))
	cmd.AddCommand(newHistoryCmd(&opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(&opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
