// Package store persists collected telemetry to PostgreSQL, one table per
// device family, and serves the read queries behind the data API.
package store
