package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

// @title Accident Report API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	serve := newServeCommand()

	rootCmd := &cobra.Command{
		Use:   "accidentapi",
		Short: "Conversational accident reporting backend",
		Long:  `accidentapi serves the accident reporting API and ships the migration and account tools that go with it.`,
		// Running the binary without a subcommand starts the server.
		RunE:         serve.RunE,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serve,
		newMigrateCommand(),
		newUserCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
