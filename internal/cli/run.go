package cli

import (
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Gameplay run commands",
	}

	cmd.AddCommand(newRunListCmd())
	cmd.AddCommand(newRunCreateCmd())
	cmd.AddCommand(newRunUpdateCmd())
	cmd.AddCommand(newRunEndCmd())
	cmd.AddCommand(newRunDeleteCmd())

	return cmd
}

// runFields holds the optional run flags. Only flags the user set are sent.
type runFields struct {
	score int
	time  float64
	level int
}

func (f *runFields) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.score, "score", 0, "Score")
	cmd.Flags().Float64Var(&f.time, "time", 0, "Time elapsed in seconds")
	cmd.Flags().IntVar(&f.level, "level", 1, "Level reached")
}

func (f *runFields) body(cmd *cobra.Command) map[string]any {
	body := map[string]any{}
	if cmd.Flags().Changed("score") {
		body["score"] = f.score
	}
	if cmd.Flags().Changed("time") {
		body["timeElapsed"] = f.time
	}
	if cmd.Flags().Changed("level") {
		body["levelReached"] = f.level
	}
	return body
}

func newRunListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [player-id]",
		Short: "List a player's runs, best score first",
		Long:  "List a player's runs, best score first. Without an argument the current session's player is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var playerID string
			if len(args) == 1 {
				playerID = args[0]
			} else {
				var me Player
				if _, err := client.Get("/api/players/session/validate", &me); err != nil {
					return err
				}
				playerID = me.ID
			}

			result := []Run{}
			if _, err := client.Get("/api/runs/"+playerID, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRunCreateCmd() *cobra.Command {
	var fields runFields

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a run for the current player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Run

			if _, err := client.Post("/api/runs", fields.body(cmd), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func newRunUpdateCmd() *cobra.Command {
	var fields runFields

	cmd := &cobra.Command{
		Use:   "update <run-id>",
		Short: "Update fields of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Run

			if _, err := client.Put("/api/runs/"+args[0], fields.body(cmd), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func newRunEndCmd() *cobra.Command {
	var fields runFields

	cmd := &cobra.Command{
		Use:   "end <run-id>",
		Short: "Record the final values of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Run

			if _, err := client.Patch("/api/runs/"+args[0]+"/end", fields.body(cmd), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func newRunDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete one of your runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := client.Delete("/api/runs/"+args[0], nil)
			if err != nil {
				return err
			}

			output(cmd).PrintMessage(msg)
			return nil
		},
	}
}
