package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	// Verify each default value explicitly
	// This serves as living documentation of the defaults
	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxPages is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 100 {
			t.Errorf("expected MaxPages to be 100, got %d", cfg.MaxPages)
		}
	})

	t.Run("default MaxDepth is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 5 {
			t.Errorf("expected MaxDepth to be 5, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default DomainConcurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.DomainConcurrency != 4 {
			t.Errorf("expected DomainConcurrency to be 4, got %d", cfg.DomainConcurrency)
		}
	})

	t.Run("default GlobalConcurrency is 16", func(t *testing.T) {
		t.Parallel()
		if cfg.GlobalConcurrency != 16 {
			t.Errorf("expected GlobalConcurrency to be 16, got %d", cfg.GlobalConcurrency)
		}
	})

	t.Run("default RetryBudget is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryBudget != 3 {
			t.Errorf("expected RetryBudget to be 3, got %d", cfg.RetryBudget)
		}
	})

	t.Run("default CrawlDelay is zero", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDelay != 0 {
			t.Errorf("expected CrawlDelay to be 0, got %v", cfg.CrawlDelay)
		}
	})

	t.Run("default patterns cover common catalogue layouts", func(t *testing.T) {
		t.Parallel()
		want := []string{"/product/", "/item/", "/p/", "/catalogue/"}
		if len(cfg.Patterns) != len(want) {
			t.Fatalf("expected %d patterns, got %d", len(want), len(cfg.Patterns))
		}
		for i, p := range want {
			if cfg.Patterns[i] != p {
				t.Errorf("pattern %d = %q, want %q", i, cfg.Patterns[i], p)
			}
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Domains = []string{"books.toscrape.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("multiple domains is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Domains = []string{"example1.com", "example2.com", "books.toscrape.com"}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty domains returns ErrNoDomains", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Domains = nil

		if err := cfg.Validate(); !errors.Is(err, ErrNoDomains) {
			t.Errorf("expected ErrNoDomains, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("zero max pages returns ErrInvalidMaxPages", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxPages = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxPages) {
			t.Errorf("expected ErrInvalidMaxPages, got %v", err)
		}
	})

	t.Run("zero depth is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative depth returns ErrInvalidMaxDepth", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = -1

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxDepth) {
			t.Errorf("expected ErrInvalidMaxDepth, got %v", err)
		}
	})

	t.Run("zero domain concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.DomainConcurrency = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("zero global concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.GlobalConcurrency = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("zero retry budget returns ErrInvalidRetryBudget", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RetryBudget = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRetryBudget) {
			t.Errorf("expected ErrInvalidRetryBudget, got %v", err)
		}
	})

	t.Run("negative crawl delay returns ErrInvalidCrawlDelay", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CrawlDelay = -1 * time.Second

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidCrawlDelay) {
			t.Errorf("expected ErrInvalidCrawlDelay, got %v", err)
		}
	})

	t.Run("negative max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = -1

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("json and markdown both enabled returns ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true

		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("json only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("markdown only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MarkdownReport = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth:  3,
				Cookie: "default_cookie=abc",
			},
			Sites: map[string]SiteConfig{},
		}

		cfg := file.GetSiteConfig("unknown.example.com")
		if cfg.Depth != 3 {
			t.Errorf("expected depth 3, got %d", cfg.Depth)
		}
		if cfg.Cookie != "default_cookie=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("returns site-specific config", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth:  3,
				Cookie: "default_cookie=abc",
			},
			Sites: map[string]SiteConfig{
				"shop.example.com": {
					Depth:  8,
					Cookie: "session=xyz",
				},
			},
		}

		cfg := file.GetSiteConfig("shop.example.com")
		if cfg.Depth != 8 {
			t.Errorf("expected depth 8, got %d", cfg.Depth)
		}
		if cfg.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("site patterns override defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Patterns: []string{"/product/"},
			},
			Sites: map[string]SiteConfig{
				"shop.example.com": {
					Patterns: []string{"/artikel/", "re:^/dp/[A-Z0-9]+$"},
				},
			},
		}

		cfg := file.GetSiteConfig("shop.example.com")
		if len(cfg.Patterns) != 2 || cfg.Patterns[0] != "/artikel/" {
			t.Errorf("expected site patterns, got %v", cfg.Patterns)
		}
	})

	t.Run("merges headers from defaults and site", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"X-Default": "value1",
				},
			},
			Sites: map[string]SiteConfig{
				"shop.example.com": {
					Headers: map[string]string{
						"X-Custom": "value2",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("shop.example.com")
		if cfg.Headers["X-Default"] != "value1" {
			t.Errorf("expected default header, got %v", cfg.Headers)
		}
		if cfg.Headers["X-Custom"] != "value2" {
			t.Errorf("expected custom header, got %v", cfg.Headers)
		}
	})

	t.Run("site headers override default headers without mutating defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"Authorization": "default-token",
				},
			},
			Sites: map[string]SiteConfig{
				"shop.example.com": {
					Headers: map[string]string{
						"Authorization": "site-token",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("shop.example.com")
		if cfg.Headers["Authorization"] != "site-token" {
			t.Errorf("expected site token to override, got %q", cfg.Headers["Authorization"])
		}
		if file.Defaults.Headers["Authorization"] != "default-token" {
			t.Error("defaults map was mutated by the merge")
		}
	})

	t.Run("zero depth uses default", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth: 3,
			},
			Sites: map[string]SiteConfig{
				"shop.example.com": {
					Cookie: "session=abc", // no depth specified
				},
			},
		}

		cfg := file.GetSiteConfig("shop.example.com")
		if cfg.Depth != 3 {
			t.Errorf("expected default depth 3, got %d", cfg.Depth)
		}
		if cfg.Cookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth: 2,
			},
		}

		cfg := file.GetSiteConfig("any.example.com")
		if cfg.Depth != 2 {
			t.Errorf("expected depth 2, got %d", cfg.Depth)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.shopscan")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shopscan")

		content := `defaults:
  depth: 3
  cookie: "default=abc"
sites:
  shop.example.com:
    depth: 8
    maxPages: 500
    concurrency: 2
    delay: 750ms
    cookie: "session=xyz"
    userAgent: "custom-agent/1.0"
    headers:
      Authorization: "Bearer token"
    patterns:
      - "/artikel/"
      - "re:^/dp/[A-Z0-9]+$"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.Depth != 3 {
			t.Errorf("expected default depth 3, got %d", cfg.Defaults.Depth)
		}
		if cfg.Defaults.Cookie != "default=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Defaults.Cookie)
		}

		site, ok := cfg.Sites["shop.example.com"]
		if !ok {
			t.Fatal("expected shop.example.com in sites")
		}
		if site.Depth != 8 {
			t.Errorf("expected site depth 8, got %d", site.Depth)
		}
		if site.MaxPages != 500 {
			t.Errorf("expected site max pages 500, got %d", site.MaxPages)
		}
		if time.Duration(site.Delay) != 750*time.Millisecond {
			t.Errorf("expected delay 750ms, got %v", time.Duration(site.Delay))
		}
		if site.UserAgent != "custom-agent/1.0" {
			t.Errorf("expected site user agent, got %q", site.UserAgent)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header")
		}
		if len(site.Patterns) != 2 {
			t.Errorf("expected 2 patterns, got %d", len(site.Patterns))
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shopscan")

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for malformed duration", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shopscan")

		content := `defaults:
  delay: "fast"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for malformed duration")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shopscan")

		content := `defaults:
  depth: 2
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("returns empty when no config found", func(_ *testing.T) {
		result := FindConfigFile("")
		// This may or may not find a config depending on the system
		// Just ensure it doesn't panic
		_ = result
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		if XDGDataDir() == "" {
			t.Error("expected non-empty XDG data dir")
		}
	})

	t.Run("XDGConfigDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		if XDGConfigDir() == "" {
			t.Error("expected non-empty XDG config dir")
		}
	})
}
