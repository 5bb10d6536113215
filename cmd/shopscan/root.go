package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for shopscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopscan",
		Short: "Product URL discovery crawler for e-commerce sites",
		Long: `Shopscan crawls e-commerce sites and discovers product detail pages.

Each domain is crawled independently from its root page. Links are
followed within the domain up to the configured depth and page budget;
URLs matching the product patterns are verified with a fetch and
collected into the result mapping.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
