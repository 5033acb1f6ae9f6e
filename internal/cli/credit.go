package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
)

func newCreditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Manage prepaid credit (admin)",
	}

	cmd.AddCommand(newCreditOpCmd("add", "Add credit", "/api/v1/credit/add"))
	cmd.AddCommand(newCreditOpCmd("remove", "Remove credit", "/api/v1/credit/remove"))
	cmd.AddCommand(newCreditOpCmd("set", "Set credit to an absolute amount", "/api/v1/credit/set"))

	return cmd
}

func newCreditOpCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			req := request.CreditRequest{User: args[0], Amount: amount}
			var result response.Credit
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %s", s)
	}
	return d, nil
}
