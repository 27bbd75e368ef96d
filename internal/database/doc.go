// Package database provides connection pool management for the PostgreSQL
// telemetry store.
package database
