package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repograde/repograde/internal/adapters/outbound/tui"
	"github.com/repograde/repograde/internal/domain"
)

func newDynamicCmd(opts *globalOptions) *cobra.Command {
	var (
		testType   string
		jsonOutput bool
		saveYAML   string
		showYAML   bool
		local      string
		token      string
	)

	cmd := &cobra.Command{
		Use:   "dynamic [owner/repo]",
		Short: "Generate a CI workflow and an AI quality report",
		Long: "Generate a GitHub Actions workflow for the chosen test type, sample the repository's source files " +
			"and ask the configured model for a scored quality report. Nothing is committed; use 'repograde commit' " +
			"to add the generated workflow.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tt, err := domain.ParseTestType(testType)
			if err != nil {
				return err
			}
			repo, err := repoArg(args, local)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.dynamicService(local, true)
			if err != nil {
				return err
			}
			res := svc.RunDynamicTest(cmd.Context(), tt, repo.Owner, repo.Name, token)

			if saveYAML != "" && res.YAML != "" {
				if err := os.WriteFile(saveYAML, []byte(res.YAML+"\n"), 0644); err != nil {
					return fmt.Errorf("writing workflow: %w", err)
				}
			}

			if jsonOutput {
				if err := renderJSON(cmd, res); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderDynamic(res, showYAML))
			}

			if !res.Success {
				return fmt.Errorf("%s test failed", tt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&testType, "type", string(domain.TestESLint), "Test type (eslint, prettier, jest, security, performance, accessibility)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().StringVar(&saveYAML, "save-yaml", "", "Write the generated workflow to this file")
	cmd.Flags().BoolVar(&showYAML, "show-yaml", false, "Print the generated workflow")
	cmd.Flags().StringVar(&local, "local", "", "Use a local git checkout instead of GitHub")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (defaults to github.token from the config)")

	return cmd
}
