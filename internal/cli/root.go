// Package cli implements the learnme command-line interface.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "learnme",
	Short: "Documentation crawler and topic extractor",
	Long:  `LearnMe - crawls documentation sites, validates their pages, and organizes them into quiz-ready topics`,
}

func Execute() error {
	// .env first so viper's AutomaticEnv sees its variables.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
}
