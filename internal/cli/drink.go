package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
)

func newDrinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drink",
		Short: "Book drinks",
	}

	cmd.AddCommand(newDrinkBookingCmd("add", "Add drinks to a user's tally", "/api/v1/drinks/add"))
	cmd.AddCommand(newDrinkBookingCmd("remove", "Remove drinks from a user's tally", "/api/v1/drinks/remove"))
	cmd.AddCommand(newDrinkAdjustCmd())

	return cmd
}

func newDrinkBookingCmd(use, short, path string) *cobra.Command {
	var req request.BookingRequest

	cmd := &cobra.Command{
		Use:   use + " <user> <drink>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.User = args[0]
			req.Drink = args[1]

			var result response.Booking
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&req.Count, "count", "n", 1, "Number of drinks")
	cmd.Flags().BoolVar(&req.Free, "free", false, "Sponsored free drink")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Reason for a free drink")

	return cmd
}

func newDrinkAdjustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <user> <drink> <count>",
		Short: "Set a drink count directly",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid count: %s", args[2])
			}

			req := request.AdjustRequest{User: args[0], Drink: args[1], Count: count}
			var result response.Booking
			if err := client.Post("/api/v1/drinks/adjust", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [user]",
		Short: "Reset drink counters of one user, or of everyone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.ResetRequest
			if len(args) == 1 {
				req.User = args[0]
			}

			if err := client.Post("/api/v1/counters/reset", req, nil); err != nil {
				return err
			}

			msg := "Counters reset"
			if req.User != "" {
				msg = fmt.Sprintf("Counters of %s reset", req.User)
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(msg)
			return nil
		},
	}
}
