package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/tallyledger/internal/api/request"
	"github.com/mcoot/tallyledger/internal/api/response"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show and edit the price list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List drinks and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Catalog
			if err := client.Get("/api/v1/catalog", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	var icon string
	setCmd := &cobra.Command{
		Use:   "set <drink> <price>",
		Short: "Add a drink or change its price (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			var result response.PriceChange
			req := request.PriceRequest{Price: price, Icon: icon}
			if err := client.Put("/api/v1/catalog/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
	setCmd.Flags().StringVar(&icon, "icon", "", "Icon of the drink")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <drink>",
		Short: "Remove a drink (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/catalog/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Drink %s removed", args[0]))
			return nil
		},
	})

	return cmd
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change runtime settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Settings
			if err := client.Get("/api/v1/settings", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "free-amount <amount>",
		Short: "Set the free amount (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return putSettings(cmd, "free-amount", request.AmountRequest{Amount: amount})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "currency <symbol>",
		Short: "Set the currency symbol (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return putSettings(cmd, "currency", request.CurrencyRequest{Currency: args[0]})
		},
	})

	var confirm string
	freeCmd := &cobra.Command{
		Use:   "free-drinks <on|off>",
		Short: "Switch free drinks (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %s", args[0])
			}
			return putSettings(cmd, "free-drinks", request.FreeDrinksRequest{Enabled: enabled, Confirmation: confirm})
		},
	}
	freeCmd.Flags().StringVar(&confirm, "confirm", "", "Confirmation phrase for switching off")
	cmd.AddCommand(freeCmd)

	return cmd
}

func putSettings(cmd *cobra.Command, name string, body any) error {
	var result response.Settings
	if err := client.Put("/api/v1/settings/"+name, body, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
	return nil
}

func newAdminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "List and manage admins and public devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Admins
			if err := client.Get("/api/v1/admins", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.AddCommand(newRoleCmd("grant <name>", "Grant admin rights", "/api/v1/admins/", true, "%s is now an admin"))
	cmd.AddCommand(newRoleCmd("revoke <name>", "Revoke admin rights", "/api/v1/admins/", false, "%s is no longer an admin"))
	cmd.AddCommand(newRoleCmd("add-device <name>", "Mark an identity as a public device", "/api/v1/public-devices/", true, "%s is now a public device"))
	cmd.AddCommand(newRoleCmd("remove-device <name>", "Unmark a public device", "/api/v1/public-devices/", false, "%s is no longer a public device"))

	return cmd
}

func newRoleCmd(use, short, prefix string, grant bool, msg string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := prefix + url.PathEscape(args[0])
			var err error
			if grant {
				err = client.Put(path, nil, nil)
			} else {
				err = client.Delete(path)
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf(msg, args[0]))
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var req request.ExportRequest

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an amount-due backup (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Export
			if err := client.Post("/api/v1/export", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Cadence, "cadence", "manual", "Cadence: daily, weekly, monthly, manual")
	cmd.Flags().IntVar(&req.Interval, "interval", 0, "Write only every n-th period")
	cmd.Flags().IntVar(&req.Keep, "keep", 0, "Retention (files for manual, days otherwise)")

	return cmd
}

func newPurgeCmd() *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all users and free drinks (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/purge", request.ConfirmRequest{Confirmation: confirm}, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Ledger purged")
			return nil
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", `Confirmation phrase, e.g. "YES I WANT"`)

	return cmd
}
