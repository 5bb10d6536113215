// Package config provides configuration structures and utilities for shopscan.
// It defines the crawl options shared by every domain, per-site overrides
// loaded from the .shopscan file, and report output preferences.
package config
