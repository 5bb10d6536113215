package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopscan/shopscan/internal/config"
	"github.com/shopscan/shopscan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past crawl runs and their product URLs",
		Long: `History lists crawl runs recorded in the local database and lets you
inspect the product URLs a past run discovered.

Examples:
  # List the most recent crawl runs
  shopscan history

  # Show the product URLs of run 3
  shopscan history --run 3

  # Show the product URLs of the latest run that crawled a domain
  shopscan history --domain books.toscrape.com`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")
	cmd.Flags().Int64("run", 0, "Show product URLs discovered by the given run ID")
	cmd.Flags().String("domain", "", "Show product URLs from the latest run that crawled this domain")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}
	domain, err := cmd.Flags().GetString("domain")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			cmd.Println("No crawl history yet. Run 'shopscan crawl' first.")
			return nil
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case runID > 0:
		return showRun(ctx, cmd, db, runID)
	case domain != "":
		return showDomain(ctx, cmd, db, domain)
	default:
		return listRuns(ctx, cmd, db, limit)
	}
}

// listRuns prints a summary line per recorded run, newest first.
func listRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No crawl history yet. Run 'shopscan crawl' first.")
		return nil
	}

	cmd.Printf("%-6s %-20s %-10s %-8s %-9s %-6s %-8s\n",
		"ID", "STARTED", "DURATION", "DOMAINS", "PRODUCTS", "PAGES", "FAILURES")
	for _, run := range runs {
		cmd.Printf("%-6d %-20s %-10s %-8d %-9d %-6d %-8d\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Duration.Round(time.Millisecond),
			run.DomainCount,
			run.ProductCount,
			run.PageCount,
			run.FailureCount,
		)
	}
	return nil
}

// showRun prints the product URLs of one run, grouped by domain.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, runID int64) error {
	products, err := db.ProductsForRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if products == nil {
		return fmt.Errorf("run %d not found", runID)
	}

	domains := make([]string, 0, len(products))
	for d := range products {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, d := range domains {
		cmd.Printf("%s (%d products)\n", d, len(products[d]))
		for _, u := range products[d] {
			cmd.Printf("  %s\n", u)
		}
	}
	return nil
}

// showDomain prints the product URLs from the latest run covering a domain.
func showDomain(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, domain string) error {
	urls, err := db.ProductsForDomain(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to load products for %s: %w", domain, err)
	}
	if urls == nil {
		return fmt.Errorf("no recorded crawl for %s", domain)
	}

	cmd.Printf("%s (%d products)\n", domain, len(urls))
	for _, u := range urls {
		cmd.Printf("  %s\n", u)
	}
	return nil
}
