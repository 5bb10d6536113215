package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopscan/shopscan/internal/database"
	"github.com/shopscan/shopscan/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
		if flag.DefValue != "10" {
			t.Errorf("expected default '10', got %q", flag.DefValue)
		}
	})

	t.Run("has run flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("run") == nil {
			t.Error("expected run flag")
		}
	})

	t.Run("has domain flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("domain") == nil {
			t.Error("expected domain flag")
		}
	})
}

// historyTestDB creates a database with one stored run for output tests.
func historyTestDB(t *testing.T) (*database.HistoryDB, int64) {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	report := &model.CrawlReport{
		StartedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Duration:  42 * time.Second,
		Domains: []*model.DomainReport{
			{
				Domain:       "shop.example.com",
				SeedURL:      "https://shop.example.com/",
				ProductURLs:  []string{"https://shop.example.com/product/1", "https://shop.example.com/product/2"},
				PagesFetched: 5,
			},
		},
	}

	runID, err := db.SaveReport(context.Background(), report)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	return db, runID
}

// TestListRuns tests the run listing output.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db, _ := historyTestDB(t)

	var buf bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&buf)

	if err := listRuns(context.Background(), cmd, db, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "PRODUCTS") {
		t.Error("expected header row in output")
	}
	if !strings.Contains(output, "2026-03-14") {
		t.Errorf("expected run start date in output, got:\n%s", output)
	}
}

// TestListRunsEmpty tests listing with no recorded runs.
func TestListRunsEmpty(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var buf bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&buf)

	if err := listRuns(context.Background(), cmd, db, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No crawl history") {
		t.Errorf("expected empty-history message, got:\n%s", buf.String())
	}
}

// TestShowRun tests per-run product output.
func TestShowRun(t *testing.T) {
	t.Parallel()

	db, runID := historyTestDB(t)

	var buf bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&buf)

	if err := showRun(context.Background(), cmd, db, runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "shop.example.com (2 products)") {
		t.Errorf("expected domain heading, got:\n%s", output)
	}
	if !strings.Contains(output, "https://shop.example.com/product/1") {
		t.Errorf("expected product URL, got:\n%s", output)
	}
}

// TestShowRunNotFound tests the unknown run ID error.
func TestShowRunNotFound(t *testing.T) {
	t.Parallel()

	db, _ := historyTestDB(t)

	cmd := NewHistoryCmd()
	cmd.SetOut(&bytes.Buffer{})

	if err := showRun(context.Background(), cmd, db, 9999); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

// TestShowDomain tests per-domain product output.
func TestShowDomain(t *testing.T) {
	t.Parallel()

	db, _ := historyTestDB(t)

	var buf bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&buf)

	if err := showDomain(context.Background(), cmd, db, "shop.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "https://shop.example.com/product/2") {
		t.Errorf("expected product URL, got:\n%s", buf.String())
	}
}

// TestShowDomainNotFound tests the unknown domain error.
func TestShowDomainNotFound(t *testing.T) {
	t.Parallel()

	db, _ := historyTestDB(t)

	cmd := NewHistoryCmd()
	cmd.SetOut(&bytes.Buffer{})

	if err := showDomain(context.Background(), cmd, db, "never.crawled.example"); err == nil {
		t.Fatal("expected error for unknown domain")
	}
}
