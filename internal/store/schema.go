package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/parth2411/sepa-iot-platform/internal/device"
)

// TableFor returns the telemetry table for a device family.
func TableFor(kind device.Kind) string {
	return strings.ToLower(kind.String())
}

// sharedColumns lead every telemetry table; per-family measurement columns
// follow them.
const sharedColumns = `
	timestamp   TIMESTAMPTZ NOT NULL,
	device_eui  TEXT NOT NULL,
	device_name TEXT,
	device_type TEXT,
	site_name   TEXT,
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	payload     TEXT,`

var tableSchemas = map[device.Kind]string{
	device.KindDroplet: `CREATE TABLE IF NOT EXISTS droplet (` + sharedColumns + `
	air_temp     DOUBLE PRECISION,
	air_pressure DOUBLE PRECISION,
	air_humidity DOUBLE PRECISION,
	battery_volt DOUBLE PRECISION,
	rtc_temp     DOUBLE PRECISION,
	rainfall     DOUBLE PRECISION,
	status       INTEGER
)`,
	device.KindEcho: `CREATE TABLE IF NOT EXISTS echo (` + sharedColumns + `
	water_level  DOUBLE PRECISION,
	air_temp     DOUBLE PRECISION,
	battery_volt DOUBLE PRECISION,
	water_temp   DOUBLE PRECISION,
	status       INTEGER
)`,
	device.KindHygro: `CREATE TABLE IF NOT EXISTS hygro (` + sharedColumns + `
	soil_moisture     DOUBLE PRECISION,
	soil_temp         DOUBLE PRECISION,
	soil_conductivity DOUBLE PRECISION,
	air_temp          DOUBLE PRECISION,
	air_humidity      DOUBLE PRECISION,
	battery_volt      DOUBLE PRECISION,
	status            INTEGER
)`,
	device.KindHydroRanger: `CREATE TABLE IF NOT EXISTS hydroranger (` + sharedColumns + `
	metadata        TEXT,
	sensors         INTEGER,
	water_level_avg DOUBLE PRECISION,
	water_level_min DOUBLE PRECISION,
	water_level_max DOUBLE PRECISION,
	air_temp        DOUBLE PRECISION,
	air_humidity    DOUBLE PRECISION
)`,
	device.KindTheta: `CREATE TABLE IF NOT EXISTS theta (` + sharedColumns + `
	metadata          TEXT,
	soil_moisture     DOUBLE PRECISION,
	soil_temp         DOUBLE PRECISION,
	soil_conductivity DOUBLE PRECISION
)`,
}

const runsSchema = `CREATE TABLE IF NOT EXISTS collection_runs (
	run_id              UUID PRIMARY KEY,
	device_eui          TEXT NOT NULL,
	device_type         TEXT NOT NULL,
	window_start        TIMESTAMPTZ,
	window_end          TIMESTAMPTZ,
	batches             INTEGER,
	successful_batches  INTEGER,
	records             INTEGER,
	dropped_records     INTEGER,
	timestamp_fallbacks INTEGER,
	completed_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the telemetry tables, the run log and the lookup
// indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, kind := range device.Kinds {
		if _, err := s.db.Exec(ctx, tableSchemas[kind]); err != nil {
			return fmt.Errorf("create table %s: %w", TableFor(kind), err)
		}
		idx := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %[1]s_device_time_idx ON %[1]s (device_eui, timestamp)`,
			TableFor(kind),
		)
		if _, err := s.db.Exec(ctx, idx); err != nil {
			return fmt.Errorf("create index on %s: %w", TableFor(kind), err)
		}
	}

	if _, err := s.db.Exec(ctx, runsSchema); err != nil {
		return fmt.Errorf("create table collection_runs: %w", err)
	}
	return nil
}
