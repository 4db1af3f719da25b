package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match commands",
	}

	cmd.AddCommand(newMatchCreateCmd())
	cmd.AddCommand(newMatchListCmd())
	cmd.AddCommand(newMatchMineCmd())
	cmd.AddCommand(newMatchShowCmd())
	cmd.AddCommand(newMatchJoinCmd())
	cmd.AddCommand(newMatchPlayCmd())
	cmd.AddCommand(newMatchAbandonCmd())

	return cmd
}

func newMatchCreateCmd() *cobra.Command {
	var machine bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new match",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]bool{"machine": machine}
			var result Match

			if err := client.Post("/api/v1/matches", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&machine, "machine", false, "Play against the machine")

	return cmd
}

func newMatchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []OpenMatch

			if err := client.Get("/api/v1/matches", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Show your active match",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Get("/api/v1/matches/mine", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <match-id>",
		Short: "Show a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Get("/api/v1/matches/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <match-id>",
		Short: "Join an open match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/join", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <match-id> <rock|paper|scissors>",
		Short: "Submit your choice for the current round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"choice": args[1]}
			var result PlayResult

			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/choice", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <match-id>",
		Short: "Abandon a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/abandon", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
