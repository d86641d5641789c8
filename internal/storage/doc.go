// Package storage keeps a history of scenario runs.
//
// It currently supports:
//   - "file": append-only JSON Lines, no external services
//   - "sqlite": a single SQLite database file (pure Go driver)
package storage
