// internal/cli/root.go

// Package cli holds the matching-server command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matching-server",
	Short: "Candidate-job matching and recommendation service",
	Long: `matching-server scores candidates against job postings and serves
ranked recommendations, per-tier statistics and score-cache management
over HTTP.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
