// Package database provides SQLite-based storage for shopscan.
//
// This package implements the HistoryDB, which stores:
//   - One record per completed crawl run with its summary statistics
//   - The product URLs each run confirmed, keyed by domain and kept in
//     discovery order
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for our use case
//  4. WAL mode provides good concurrent read performance
package database
