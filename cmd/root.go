package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Lectern - Course materials question answering",
	Long: `Lectern answers questions about course materials using retrieval-augmented
generation.

It ingests course scripts into a vector store, resolves fuzzy course name
references semantically, and lets a language model search the indexed
content through tools before composing an answer.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
}
