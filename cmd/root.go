package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"donorscan/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "donorscan",
	Short: "Donorscan - donation check ingestion and matching",
	Long: `Donorscan ingests scanned donation check batches, extracts donor and
payment details with OCR, and matches donors against the CRM contact
directory for review and submission.

Run "donorscan serve" to start the review API, or "donorscan process" to
run a single batch from the command line.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Donorscan CLI executed")

		fmt.Println("Welcome to Donorscan!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
