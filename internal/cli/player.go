package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player and session commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerLogoutCmd())
	cmd.AddCommand(newPlayerValidateCmd())
	cmd.AddCommand(newPlayerDeleteCmd())

	return cmd
}

// credentials returns the password from --pass, prompting for it if unset
func credentials(cmd *cobra.Command, pass string) (string, error) {
	if pass != "" {
		return pass, nil
	}
	pw, err := readPassword("Password: ", cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", fmt.Errorf("password is required")
	}
	return pw, nil
}

// authenticate posts credentials to path and saves the returned token
func authenticate(cmd *cobra.Command, path, user, pass string) error {
	pw, err := credentials(cmd, pass)
	if err != nil {
		return err
	}

	req := map[string]string{
		"username": user,
		"password": pw,
	}
	var result AuthResult

	msg, err := client.Post(path, req, &result)
	if err != nil {
		return err
	}
	verbosef(cmd, "%s", msg)

	// Save token
	if err := cfg.SaveToken(result.SessionToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.SessionToken)

	output(cmd).Print(result)
	return nil
}

func newPlayerRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(cmd, "/api/players", user, pass)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(cmd, "/api/players/login", user, pass)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := client.Post("/api/players/logout", nil, nil)
			if err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			output(cmd).PrintMessage(msg)
			return nil
		},
	}
}

func newPlayerValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Aliases: []string{"me"},
		Short:   "Check the current session and show its player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player

			if _, err := client.Get("/api/players/session/validate", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <player-id>",
		Short: "Delete a player account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := client.Delete("/api/players/"+args[0], nil)
			if err != nil {
				return err
			}

			output(cmd).PrintMessage(msg)
			return nil
		},
	}
}
