package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logLevel string
	var logFile string

	cmd := &cobra.Command{
		Use:   "bookresolver",
		Short: "Resolve noisy OCR text from a book cover to catalog entries",
		Long: `Bookresolver turns the OCR text of a book cover or title page into a
candidate title and ranks the matching entries of a library catalog.

Titles are extracted by the first working AI provider (Gemini, OpenAI or
Ollama) and fall back to local heuristics when none is available.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			if v := os.Getenv("LOG_LEVEL"); v != "" && !cmd.Flags().Changed("log-level") {
				logLevel = v
			}
			return setupLogging(logLevel, logFile)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error); LOG_LEVEL also works")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file, rotated")

	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
