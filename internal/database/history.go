package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shopscan/shopscan/internal/model"
)

// HistoryDB provides SQLite-based storage for completed crawl runs so past
// product discoveries can be listed and compared without re-crawling.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. This keeps cross-run queries (how did this domain's
// catalogue change?) cheap and simplifies backup/restore.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// ErrDatabaseNotFound is returned by Open when the database file does not
// exist and Options.CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "shopscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections gain nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		domain_count INTEGER NOT NULL,
		product_count INTEGER NOT NULL,
		page_count INTEGER NOT NULL,
		failure_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per confirmed product URL, ordered by discovery position
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		domain TEXT NOT NULL,
		url TEXT NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE(run_id, domain, url)
	);

	CREATE INDEX IF NOT EXISTS idx_products_run ON products(run_id);
	CREATE INDEX IF NOT EXISTS idx_products_domain ON products(domain);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport persists a completed crawl run and its product URLs.
// It returns the run's database ID.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var pages, failures int
	for _, d := range report.Domains {
		pages += d.PagesFetched
		failures += d.FailedFetches
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, duration_ms, domain_count, product_count, page_count, failure_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Duration.Milliseconds(),
		len(report.Domains),
		report.TotalProducts(),
		pages,
		failures,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	// UPSERT keeps a replayed save idempotent for the same run.
	const insertProduct = `
	INSERT INTO products (run_id, domain, url, position)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(run_id, domain, url) DO UPDATE SET position = excluded.position
	`
	for _, d := range report.Domains {
		for i, u := range d.ProductURLs {
			if _, err := tx.ExecContext(ctx, insertProduct, runID, d.Domain, u, i); err != nil {
				return 0, fmt.Errorf("failed to insert product: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary contains metadata about a stored crawl run.
// This is used for displaying crawl history without loading every product row.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration

	// DomainCount is the number of domains crawled.
	DomainCount int

	// ProductCount is the total number of product URLs found.
	ProductCount int

	// PageCount is the total number of pages fetched.
	PageCount int

	// FailureCount is the total number of failed fetches.
	FailureCount int
}

// RecentRuns returns the most recent runs, newest first, up to limit.
// A limit of 0 or less returns all runs.
func (hdb *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, started_at, duration_ms, domain_count, product_count, page_count, failure_count
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var s RunSummary
		var startedAt string
		var durationMS int64

		if err := rows.Scan(&s.ID, &startedAt, &durationMS, &s.DomainCount, &s.ProductCount, &s.PageCount, &s.FailureCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, s)
	}

	return results, rows.Err()
}

// ProductsForRun returns the product URLs of a stored run as a
// domain-to-URLs mapping, each list in its stored discovery order.
// It returns nil without error when the run does not exist.
func (hdb *HistoryDB) ProductsForRun(ctx context.Context, runID int64) (map[string][]string, error) {
	var exists int
	err := hdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check run: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	rows, err := hdb.db.QueryContext(ctx,
		`SELECT domain, url FROM products WHERE run_id = ? ORDER BY domain, position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var domain, url string
		if err := rows.Scan(&domain, &url); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result[domain] = append(result[domain], url)
	}

	return result, rows.Err()
}

// ProductsForDomain returns the product URLs recorded for a domain in its
// most recent run, in discovery order. It returns nil without error when
// the domain has never produced a product.
func (hdb *HistoryDB) ProductsForDomain(ctx context.Context, domain string) ([]string, error) {
	var runID int64
	err := hdb.db.QueryRowContext(ctx,
		`SELECT run_id FROM products WHERE domain = ? ORDER BY run_id DESC LIMIT 1`,
		domain,
	).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run for domain: %w", err)
	}

	rows, err := hdb.db.QueryContext(ctx,
		`SELECT url FROM products WHERE run_id = ? AND domain = ? ORDER BY position`,
		runID, domain,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// CrawledDomains returns every domain that appears in stored runs, sorted.
func (hdb *HistoryDB) CrawledDomains(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT domain FROM products ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
