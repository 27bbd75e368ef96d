package record

import (
	"sort"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/device"
)

// Canonical is one fully-assembled telemetry record: envelope, decoded
// reading and device identity merged. This is the unit handed to any sink.
type Canonical struct {
	Timestamp time.Time

	DeviceEUI  string
	DeviceName string
	DeviceKind device.Kind
	SiteName   string
	Latitude   float64
	Longitude  float64

	// Payload is the raw hex string exactly as received.
	Payload string

	// Metadata holds the parsed structured metadata when the raw string
	// could be read; MetadataRaw keeps the verbatim string otherwise.
	Metadata    map[string]any
	MetadataRaw string

	Reading decoder.Reading
}

// SortByTime orders records ascending by normalized timestamp. Duplicates
// are kept; ties preserve arrival order.
func SortByTime(records []Canonical) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}
