package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/fetcher"
	"github.com/parth2411/sepa-iot-platform/internal/record"
)

// Store writes and reads telemetry in PostgreSQL.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store on an existing pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// InsertRecords writes canonical records in a single batch, each into the
// table of its device family. It returns the number of rows written.
func (s *Store) InsertRecords(ctx context.Context, recs []record.Canonical) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	start := time.Now()
	batch := &pgx.Batch{}
	for i := range recs {
		if err := queueInsert(batch, &recs[i]); err != nil {
			return 0, err
		}
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	s.logger.Debug("records inserted",
		"count", len(recs),
		"duration", time.Since(start),
	)
	return len(recs), nil
}

// RecordRun logs one device collection run to collection_runs.
func (s *Store) RecordRun(ctx context.Context, res fetcher.Result) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO collection_runs (
			run_id, device_eui, device_type, window_start, window_end,
			batches, successful_batches, records, dropped_records, timestamp_fallbacks
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.RunID,
		res.Device.EUI,
		res.Device.Kind.String(),
		res.WindowStart,
		res.WindowEnd,
		res.Batches,
		res.SuccessfulBatches,
		len(res.Records),
		res.DroppedRecords,
		res.TimestampFallbacks,
	)
	if err != nil {
		return fmt.Errorf("record collection run: %w", err)
	}
	return nil
}

// Ping verifies the database connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func queueInsert(batch *pgx.Batch, rec *record.Canonical) error {
	shared := []any{
		rec.Timestamp,
		rec.DeviceEUI,
		rec.DeviceName,
		rec.DeviceKind.String(),
		rec.SiteName,
		rec.Latitude,
		rec.Longitude,
		rec.Payload,
	}

	switch r := rec.Reading.(type) {
	case decoder.DropletReading:
		batch.Queue(`
			INSERT INTO droplet (
				timestamp, device_eui, device_name, device_type, site_name,
				latitude, longitude, payload,
				air_temp, air_pressure, air_humidity, battery_volt, rtc_temp, rainfall, status
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			append(shared, r.AirTemp, r.AirPressure, r.AirHumidity, r.BatteryVolt, r.RTCTemp, r.Rainfall, r.Status)...,
		)
	case decoder.EchoReading:
		batch.Queue(`
			INSERT INTO echo (
				timestamp, device_eui, device_name, device_type, site_name,
				latitude, longitude, payload,
				water_level, air_temp, battery_volt, water_temp, status
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			append(shared, r.WaterLevel, r.AirTemp, r.BatteryVolt, r.WaterTemp, r.Status)...,
		)
	case decoder.HygroReading:
		batch.Queue(`
			INSERT INTO hygro (
				timestamp, device_eui, device_name, device_type, site_name,
				latitude, longitude, payload,
				soil_moisture, soil_temp, soil_conductivity, air_temp, air_humidity, battery_volt, status
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			append(shared, r.SoilMoisture, r.SoilTemp, r.SoilConductivity, r.AirTemp, r.AirHumidity, r.BatteryVolt, r.Status)...,
		)
	case decoder.HydroRangerReading:
		batch.Queue(`
			INSERT INTO hydroranger (
				timestamp, device_eui, device_name, device_type, site_name,
				latitude, longitude, payload,
				metadata, sensors, water_level_avg, water_level_min, water_level_max, air_temp, air_humidity
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			append(shared, metadataText(rec), r.Sensors, r.LevelAvg, r.LevelMin, r.LevelMax, r.AirTemp, r.AirHumidity)...,
		)
	case decoder.ThetaReading:
		batch.Queue(`
			INSERT INTO theta (
				timestamp, device_eui, device_name, device_type, site_name,
				latitude, longitude, payload,
				metadata, soil_moisture, soil_temp, soil_conductivity
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			append(shared, metadataText(rec), r.SoilMoisture, r.SoilTemp, r.SoilConductivity)...,
		)
	default:
		return fmt.Errorf("no table for reading type %T", rec.Reading)
	}
	return nil
}

// metadataText serializes record metadata for storage: parsed metadata as
// JSON, otherwise the verbatim string the backend sent.
func metadataText(rec *record.Canonical) string {
	if rec.Metadata != nil {
		if b, err := json.Marshal(rec.Metadata); err == nil {
			return string(b)
		}
	}
	return rec.MetadataRaw
}
