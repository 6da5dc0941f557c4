// Package main provides the entry point for the ScreenIQ assessment server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	verbose      bool
	providerFlag string
)

var rootCmd = &cobra.Command{
	Use:   "screeniq",
	Short: "ScreenIQ assessment gate",
	Long: "ScreenIQ runs timed, proctored skill assessments for job applicants: AI-generated " +
		"questions tailored to the role and resume, camera and tab-switch checks, and AI scoring " +
		"against the job's cutoff.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "LLM provider: gemini, genai or vertex (overrides LLM_PROVIDER)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
