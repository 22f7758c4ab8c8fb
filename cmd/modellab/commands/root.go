package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modellab",
	Short: "ModelLab - trading model lifecycle service",
	Long: `ModelLab Unified CLI

Model lifecycle backend for trading strategies.
Outcome ingestion, retraining, promotion gating, drift checks and
strategy selection behind one HTTP API.

Usage:
  go run ./cmd/modellab [command]

Examples:
  go run ./cmd/modellab api
  go run ./cmd/modellab train
  go run ./cmd/modellab status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy file (default is config/policy.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
