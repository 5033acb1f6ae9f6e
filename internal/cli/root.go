package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "CLI tool for the tally ledger API",
		Long: `tally books drinks, manages credit and runs admin commands against a
tally ledger server.

Every command acts as the identity given by --user-id. Public devices may
pass a user's PIN with --pin to act for that user.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.UserID, cfg.PIN)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TALLY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserID, "user-id", cfg.UserID, "Identity id of the caller (env: TALLY_USER_ID)")
	rootCmd.PersistentFlags().StringVar(&cfg.PIN, "pin", cfg.PIN, "PIN of the target user (env: TALLY_PIN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	rootCmd.AddCommand(newDrinkCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newCreditCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newPinCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newAdminsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newPurgeCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command. API errors exit with 2, everything
// else with 1.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
