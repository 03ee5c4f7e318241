package main

import (
	"github.com/spf13/cobra"

	"sjsage522/promonotifier/logger"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single promo code check and exit",
	Long:  "Fetches the exchange rewards page once, updates the saved code count and fires the Home Assistant trigger if new codes were found.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	logger.Init()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	services, err := initializeServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer services.Cleanup()

	return newWorker(cfg, services).Check(cmd.Context())
}
