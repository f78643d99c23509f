package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repograde/repograde/internal/adapters/outbound/tui"
	"github.com/repograde/repograde/internal/domain"
)

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var (
		toolNames  []string
		all        bool
		jsonOutput bool
		local      string
		token      string
		ciMode     bool
		minScore   int
		badge      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [owner/repo]",
		Short: "Run code-quality analyzers against a repository",
		Long: "Download the relevant files of a GitHub repository (or a local checkout with --local), " +
			"run each analyzer and report a 0-100 score, a letter grade and the issues found.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repoArg(args, local)
			if err != nil {
				return err
			}
			tools := domain.AllTools
			if len(toolNames) > 0 && !all {
				if tools, err = parseToolNames(toolNames); err != nil {
					return err
				}
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.analyzeService(local)
			if err != nil {
				return err
			}
			results := svc.RunAdapters(cmd.Context(), tools, repo.Owner, repo.Name, token)

			switch {
			case jsonOutput:
				if len(results) == 1 {
					err = renderJSON(cmd, results[0])
				} else {
					err = renderJSON(cmd, results)
				}
				if err != nil {
					return err
				}
			case badge:
				renderBadges(cmd, results)
			case len(results) == 1:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderResult(results[0]))
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderResults(results))
			}

			if ciMode {
				avg, scored := averageScore(results)
				if scored > 0 && avg < minScore {
					return fmt.Errorf("average score %d is below minimum %d", avg, minScore)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&toolNames, "tool", nil, "Tools to run, comma-separated (default all)")
	cmd.Flags().BoolVar(&all, "all", false, "Run every analyzer")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringVar(&local, "local", "", "Analyze a local git checkout instead of GitHub")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (defaults to github.token from the config)")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if the average score is below --min")
	cmd.Flags().IntVar(&minScore, "min", 0, "Minimum average score for CI mode")
	cmd.Flags().BoolVar(&badge, "badge", false, "Output a shields.io badge URL per tool")
	cmd.MarkFlagsMutuallyExclusive("tool", "all")

	return cmd
}

func parseToolNames(names []string) ([]domain.Tool, error) {
	tools := make([]domain.Tool, 0, len(names))
	for _, n := range names {
		t, err := domain.ParseTool(n)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// averageScore averages the successful results. NotApplicable and failed
// results do not count.
func averageScore(results []domain.AnalysisResult) (avg, scored int) {
	total := 0
	for _, r := range results {
		if r.Success {
			scored++
			total += r.Score
		}
	}
	if scored == 0 {
		return 0, 0
	}
	return total / scored, scored
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderBadges(cmd *cobra.Command, results []domain.AnalysisResult) {
	for _, r := range results {
		if !r.Success {
			continue
		}
		url := fmt.Sprintf("https://img.shields.io/badge/%s-%d%%2F100-%s", r.Metadata.Tool, r.Score, domain.BadgeColor(r.Score))
		fmt.Fprintln(cmd.OutOrStdout(), url)
	}
}
