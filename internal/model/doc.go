// Package model defines the data structures shared across shopscan.
//
// The types here are deliberately free of behavior beyond small helpers:
// fetching, classification, and persistence live in their own packages,
// and all of them exchange these structures.
//
//   - Page: a single fetched HTTP response
//   - DomainReport: the terminal state of one domain's crawl
//   - CrawlReport: the aggregated result mapping for a whole run
package model
