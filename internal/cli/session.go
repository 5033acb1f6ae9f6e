package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
)

func newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage PINs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <user> [pin]",
		Short: "Set a user's four-digit PIN; without a PIN it is cleared",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.PinRequest{User: args[0]}
			if len(args) == 2 {
				req.Pin = args[1]
			}

			if err := client.Post("/api/v1/pins", req, nil); err != nil {
				return err
			}

			msg := fmt.Sprintf("PIN of %s set", req.User)
			if req.Pin == "" {
				msg = fmt.Sprintf("PIN of %s cleared", req.User)
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(msg)
			return nil
		},
	})

	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <user> <pin>",
		Short: "Log a public device in as user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Login
			if err := client.Post("/api/v1/sessions/login", request.LoginRequest{User: args[0], Pin: args[1]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			if !result.Success {
				return fmt.Errorf("login as %s failed", args[0])
			}
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the public device session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/sessions/logout", nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Logged out")
			return nil
		},
	}
}
