// Package export writes collected telemetry to per-device CSV files in the
// same column layout as the database tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/record"
)

var measurementColumns = map[device.Kind][]string{
	device.KindDroplet:     {"air_temp", "air_pressure", "air_humidity", "battery_volt", "rtc_temp", "rainfall", "status"},
	device.KindEcho:        {"water_level", "air_temp", "battery_volt", "water_temp", "status"},
	device.KindHygro:       {"soil_moisture", "soil_temp", "soil_conductivity", "air_temp", "air_humidity", "battery_volt", "status"},
	device.KindHydroRanger: {"metadata", "sensors", "water_level_avg", "water_level_min", "water_level_max", "air_temp", "air_humidity"},
	device.KindTheta:       {"metadata", "soil_moisture", "soil_temp", "soil_conductivity"},
}

// Filename builds the per-device export file name. Spaces and path
// separators in the device name are flattened so the name stays a single
// safe path element.
func Filename(deviceName, eui string, maxDays int) string {
	safe := strings.NewReplacer(" ", "_", "#", "", "/", "_").Replace(deviceName)
	return fmt.Sprintf("%s_%s_%ddays.csv", safe, eui, maxDays)
}

// WriteDevice writes one device's records to a CSV file under dir and
// returns the file path. The directory is created if needed.
func WriteDevice(dir string, dev device.Descriptor, recs []record.Canonical, maxDays int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, Filename(dev.Name, dev.EUI, maxDays))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"timestamp", "device_eui", "device_name", "device_type", "site_name", "latitude", "longitude", "payload"}
	header = append(header, measurementColumns[dev.Kind]...)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i := range recs {
		row, err := csvRow(&recs[i])
		if err != nil {
			return "", err
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

func csvRow(rec *record.Canonical) ([]string, error) {
	row := []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.DeviceEUI,
		rec.DeviceName,
		rec.DeviceKind.String(),
		rec.SiteName,
		formatFloat(rec.Latitude),
		formatFloat(rec.Longitude),
		rec.Payload,
	}

	switch r := rec.Reading.(type) {
	case decoder.DropletReading:
		row = append(row,
			formatFloat(r.AirTemp), formatFloat(r.AirPressure), formatFloat(r.AirHumidity),
			formatFloat(r.BatteryVolt), formatFloat(r.RTCTemp), formatFloat(r.Rainfall),
			strconv.Itoa(r.Status))
	case decoder.EchoReading:
		row = append(row,
			formatFloat(r.WaterLevel), formatFloat(r.AirTemp), formatFloat(r.BatteryVolt),
			formatFloat(r.WaterTemp), strconv.Itoa(r.Status))
	case decoder.HygroReading:
		row = append(row,
			formatFloat(r.SoilMoisture), formatFloat(r.SoilTemp), formatFloat(r.SoilConductivity),
			formatFloat(r.AirTemp), formatFloat(r.AirHumidity), formatFloat(r.BatteryVolt),
			strconv.Itoa(r.Status))
	case decoder.HydroRangerReading:
		row = append(row,
			metadataText(rec), strconv.Itoa(r.Sensors),
			strconv.Itoa(r.LevelAvg), strconv.Itoa(r.LevelMin), strconv.Itoa(r.LevelMax),
			formatFloatPtr(r.AirTemp), formatFloatPtr(r.AirHumidity))
	case decoder.ThetaReading:
		row = append(row,
			metadataText(rec),
			formatFloat(r.SoilMoisture), formatFloat(r.SoilTemp), formatFloat(r.SoilConductivity))
	default:
		return nil, fmt.Errorf("no csv layout for reading type %T", rec.Reading)
	}
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFloatPtr renders optional sensor values; nil becomes an empty cell.
func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func metadataText(rec *record.Canonical) string {
	if rec.Metadata != nil {
		if b, err := json.Marshal(rec.Metadata); err == nil {
			return string(b)
		}
	}
	return rec.MetadataRaw
}
