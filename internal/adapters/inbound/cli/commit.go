package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repograde/repograde/internal/adapters/outbound/tui"
	"github.com/repograde/repograde/internal/domain"
)

func newCommitCmd(opts *globalOptions) *cobra.Command {
	var (
		workflowName string
		file         string
		branch       string
		jsonOutput   bool
		local        string
		token        string
	)

	cmd := &cobra.Command{
		Use:   "commit [owner/repo]",
		Short: "Commit a generated workflow to .github/workflows",
		Long:  "Create or update .github/workflows/<name> with the content of --file, on --branch or the default branch.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repoArg(args, local)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading workflow: %w", err)
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.dynamicService(local, false)
			if err != nil {
				return err
			}
			res := svc.CommitGeneratedWorkflow(cmd.Context(), repo.Owner, repo.Name, workflowName, string(content), branch, token)

			if jsonOutput {
				if err := renderJSON(cmd, res); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderCommit(res))
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowName, "workflow", "", "Workflow file name, e.g. eslint-test.yml")
	cmd.Flags().StringVar(&file, "file", "", "File holding the workflow YAML")
	cmd.Flags().StringVar(&branch, "branch", "", "Target branch (default branch when empty)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().StringVar(&local, "local", "", "Commit to a local git checkout instead of GitHub")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (defaults to github.token from the config)")
	_ = cmd.MarkFlagRequired("workflow")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		workflowName string
		branch       string
		token        string
	)

	cmd := &cobra.Command{
		Use:   "watch <owner/repo>",
		Short: "Follow the latest run of a workflow until it completes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := domain.ParseRepoRef(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.dynamicService("", false)
			if err != nil {
				return err
			}
			lastStatus := ""
			run, err := svc.WatchWorkflowRun(cmd.Context(), repo.Owner, repo.Name, workflowName, branch, token,
				func(r *domain.WorkflowRun) {
					if r.Status != lastStatus {
						lastStatus = r.Status
						fmt.Fprint(cmd.OutOrStdout(), tui.RenderRun(r))
					}
				})
			if err != nil {
				return err
			}
			if run.Conclusion != "success" {
				return fmt.Errorf("workflow run %d concluded %s", run.ID, run.Conclusion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowName, "workflow", "", "Workflow file name, e.g. eslint-test.yml")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch to watch (default branch when empty)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (defaults to github.token from the config)")
	_ = cmd.MarkFlagRequired("workflow")

	return cmd
}
