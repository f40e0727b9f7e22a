// Package library persists the catalog of finished recordings in SQLite.
// The daemon records an entry when a session stops and updates it when an
// export completes; the CLI reads the catalog for listings. Timestamps are
// stored as RFC3339Nano text in UTC.
package library
