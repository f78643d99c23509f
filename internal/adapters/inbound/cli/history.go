package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repograde/repograde/internal/adapters/outbound/tui"
	"github.com/repograde/repograde/internal/domain"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [owner/repo]",
		Short: "Show stored results, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := ""
			if len(args) > 0 {
				repo, err := domain.ParseRepoRef(args[0])
				if err != nil {
					return err
				}
				repository = repo.String()
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.analyzeService("")
			if err != nil {
				return err
			}
			records, err := svc.History(cmd.Context(), repository, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				if records == nil {
					records = []domain.Record{}
				}
				return renderJSON(cmd, records)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output records as JSON")

	return cmd
}
