package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRankingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []RankingEntry

			if err := client.Get(fmt.Sprintf("/api/v1/ranking?limit=%d", limit), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries")

	return cmd
}
