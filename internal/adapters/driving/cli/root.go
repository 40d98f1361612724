// Package cli implements the command-line interface.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// retriever is the service behind every command. Wired by main via
// SetRetriever; tests substitute their own.
var retriever driving.Retriever

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ragcore",
	Short: "Document retrieval engine",
	Long: `ragcore ingests documents, chunks them into sentences, embeds the
chunks and answers similarity queries over the result.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		// A .env in the working directory supplies API keys; absence
		// is not an error.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetRetriever injects the retrieval service used by all commands.
func SetRetriever(r driving.Retriever) {
	retriever = r
}

// SetVersion overrides the build-time version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
