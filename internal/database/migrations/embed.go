// Package migrations holds the embedded schema for each supported SQL dialect.
package migrations

import "embed"

// Postgres holds the migrations applied through the pgx driver.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the migrations applied to local and test databases.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
