package record

import (
	"fmt"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/api"
	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/device"
)

// AssemblyError reports a raw record that is missing a required envelope
// field and cannot become a canonical record.
type AssemblyError struct {
	Field string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble record: missing required field %s", e.Field)
}

// Assemble merges a raw envelope, its decoded reading and the device
// descriptor into one canonical record. The reading must come from a
// successful decode: a failed decode drops the whole record upstream,
// never a partial one.
func Assemble(raw api.RawTelemetryRecord, reading decoder.Reading, dev device.Descriptor, ts time.Time) (Canonical, error) {
	if raw.DevEUI == "" {
		return Canonical{}, &AssemblyError{Field: "DevEUI"}
	}
	if raw.Payload == "" {
		return Canonical{}, &AssemblyError{Field: "Payload"}
	}
	if raw.TimeStamp == "" {
		return Canonical{}, &AssemblyError{Field: "TimeStamp"}
	}

	rec := Canonical{
		Timestamp:  ts,
		DeviceEUI:  raw.DevEUI,
		DeviceName: dev.Name,
		DeviceKind: dev.Kind,
		SiteName:   dev.Site,
		Latitude:   dev.Latitude,
		Longitude:  dev.Longitude,
		Payload:    raw.Payload,
		Reading:    reading,
	}

	if raw.Metadata != "" {
		if meta, ok := ParseMetadata(raw.Metadata); ok {
			rec.Metadata = meta
		} else {
			rec.MetadataRaw = raw.Metadata
		}
	}

	return rec, nil
}
