// Package main provides the entry point for the shopscan CLI.
//
// Shopscan discovers product detail pages on e-commerce sites.
// It crawls each configured domain from its root page, classifies URLs
// against product patterns, and reports the product URLs it confirmed.
//
// Usage:
//
//	shopscan crawl <domain> [<domain>...]
//	shopscan history
//
// See --help for all available options.
package main

// main is the entry point for shopscan.
func main() {
	Execute()
}
