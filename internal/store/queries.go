package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/parth2411/sepa-iot-platform/internal/device"
)

// Query limits. Anything above the maximum is clamped rather than
// rejected. Chunked retrieval pages with a much smaller window.
const (
	DefaultQueryLimit = 50000
	MaxQueryLimit     = 100000
	DefaultChunkLimit = 1000
	MaxChunkLimit     = 10000
)

// ErrNoData means the device has no rows in its family table.
var ErrNoData = errors.New("no data found for this device")

// DeviceInfo is one known device, in the wire shape the front ends expect.
type DeviceInfo struct {
	DeviceEUI string `json:"DeviceEUI"`
	DevName   string `json:"DevName"`
	SiteName  string `json:"SiteName"`
	Lat       string `json:"Lat"`
	Lon       string `json:"Lon"`
	Type      string `json:"type"`
}

// DataBounds is the stored time range for one device.
type DataBounds struct {
	StartTS     time.Time `json:"startTS"`
	EndTS       time.Time `json:"endTS"`
	RecordCount int       `json:"recordCount"`
}

// DataQuery filters a device data request.
type DataQuery struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// DataChunk is one page of a large device query.
type DataChunk struct {
	Total  int
	Offset int
	Limit  int
	Points []map[string]any
}

// columnMappings translate stored column names to the measurement field
// names used on the wire.
var columnMappings = map[device.Kind]map[string]string{
	device.KindHydroRanger: {
		"sensors":         "sensors",
		"water_level_avg": "levelAvg",
		"water_level_min": "levelMin",
		"water_level_max": "levelMax",
		"air_temp":        "airTemp",
		"air_humidity":    "airHumid",
	},
	device.KindEcho: {
		"water_level":  "waterLevel",
		"air_temp":     "airTemp",
		"battery_volt": "battVolt",
		"water_temp":   "waterTemp",
		"status":       "status",
	},
	device.KindDroplet: {
		"air_temp":     "airTemp",
		"air_pressure": "airPress",
		"air_humidity": "airHumid",
		"battery_volt": "battVolt",
		"rtc_temp":     "rtcTemp",
		"rainfall":     "rainfall",
		"status":       "status",
	},
	device.KindHygro: {
		"soil_moisture":     "soilMoisture",
		"soil_temp":         "soilTemp",
		"soil_conductivity": "soilEC",
		"air_temp":          "airTemp",
		"air_humidity":      "airHumid",
		"battery_volt":      "battVolt",
		"status":            "status",
	},
	device.KindTheta: {
		"soil_moisture":     "soilMoisture",
		"soil_temp":         "soilTemp",
		"soil_conductivity": "soilEC",
	},
}

// Devices lists the distinct devices present in one family table.
func (s *Store) Devices(ctx context.Context, kind device.Kind) ([]DeviceInfo, error) {
	q := fmt.Sprintf(`
		SELECT DISTINCT device_eui, device_name, site_name, latitude, longitude
		FROM %s
		ORDER BY device_name`, TableFor(kind))

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceInfo
	for rows.Next() {
		var d DeviceInfo
		var lat, lon float64
		if err := rows.Scan(&d.DeviceEUI, &d.DevName, &d.SiteName, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		d.Lat = strconv.FormatFloat(lat, 'f', -1, 64)
		d.Lon = strconv.FormatFloat(lon, 'f', -1, 64)
		d.Type = kind.String()
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// Bounds returns the stored time range and row count for one device.
func (s *Store) Bounds(ctx context.Context, kind device.Kind, eui string) (DataBounds, error) {
	q := fmt.Sprintf(`
		SELECT MIN(timestamp), MAX(timestamp), COUNT(*)
		FROM %s
		WHERE device_eui = $1`, TableFor(kind))

	var b DataBounds
	var minTS, maxTS *time.Time
	if err := s.db.QueryRow(ctx, q, eui).Scan(&minTS, &maxTS, &b.RecordCount); err != nil {
		return DataBounds{}, fmt.Errorf("query bounds: %w", err)
	}
	if b.RecordCount == 0 {
		return DataBounds{}, ErrNoData
	}
	b.StartTS, b.EndTS = *minTS, *maxTS
	return b, nil
}

// Data returns stored measurements for one device, oldest first. Each row
// carries the shared fields plus the family's measurement fields.
func (s *Store) Data(ctx context.Context, kind device.Kind, eui string, dq DataQuery) ([]map[string]any, error) {
	limit := dq.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		s.logger.Warn("query limit clamped", "requested", limit, "max", MaxQueryLimit)
		limit = MaxQueryLimit
	}

	where, args := deviceWindow(eui, dq)
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE %s
		ORDER BY timestamp ASC
		LIMIT $%d`, TableFor(kind), where, len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query data: %w", err)
	}
	defer rows.Close()

	return collectPoints(rows, kind)
}

// DataChunk pages through stored measurements for one device, oldest
// first, returning the total row count of the window alongside the page so
// callers can tell whether more pages remain.
func (s *Store) DataChunk(ctx context.Context, kind device.Kind, eui string, dq DataQuery, offset int) (DataChunk, error) {
	limit := dq.Limit
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	if limit > MaxChunkLimit {
		limit = MaxChunkLimit
	}
	if offset < 0 {
		offset = 0
	}

	where, args := deviceWindow(eui, dq)

	var total int
	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, TableFor(kind), where)
	if err := s.db.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return DataChunk{}, fmt.Errorf("count data: %w", err)
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE %s
		ORDER BY timestamp ASC
		LIMIT $%d OFFSET $%d`, TableFor(kind), where, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return DataChunk{}, fmt.Errorf("query data chunk: %w", err)
	}
	defer rows.Close()

	points, err := collectPoints(rows, kind)
	if err != nil {
		return DataChunk{}, err
	}
	return DataChunk{Total: total, Offset: offset, Limit: limit, Points: points}, nil
}

// deviceWindow builds the WHERE clause shared by the windowed queries.
func deviceWindow(eui string, dq DataQuery) (string, []any) {
	where := "device_eui = $1"
	args := []any{eui}
	if dq.Start != nil {
		args = append(args, *dq.Start)
		where += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if dq.End != nil {
		args = append(args, *dq.End)
		where += fmt.Sprintf(" AND timestamp <= $%d", len(args))
	}
	return where, args
}

// Latest returns the most recent stored measurement for one device.
func (s *Store) Latest(ctx context.Context, kind device.Kind, eui string) (map[string]any, error) {
	q := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE device_eui = $1
		ORDER BY timestamp DESC
		LIMIT 1`, TableFor(kind))

	rows, err := s.db.Query(ctx, q, eui)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()

	points, err := collectPoints(rows, kind)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}
	return points[0], nil
}

// collectPoints turns raw rows into wire-shaped measurement maps using the
// family's column mapping. Columns outside the mapping and the shared trio
// are dropped.
func collectPoints(rows pgx.Rows, kind device.Kind) ([]map[string]any, error) {
	mapping := columnMappings[kind]
	fields := rows.FieldDescriptions()

	var points []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		point := map[string]any{}
		for i, fd := range fields {
			switch fd.Name {
			case "timestamp":
				if ts, ok := values[i].(time.Time); ok {
					point["timestamp"] = ts.UTC().Format(time.RFC3339)
				}
			case "device_eui":
				point["deviceEUI"] = values[i]
			case "payload":
				point["payload"] = values[i]
			default:
				if wire, ok := mapping[fd.Name]; ok {
					point[wire] = values[i]
				}
			}
		}
		points = append(points, point)
	}
	return points, rows.Err()
}
