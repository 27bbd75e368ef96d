package record

import (
	"errors"
	"testing"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/api"
	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/device"
)

var testDevice = device.Descriptor{
	EUI:       "70B3D54990566062",
	Kind:      device.KindEcho,
	Name:      "Outfall Screen",
	Site:      "Harbour Way",
	Latitude:  56.1165,
	Longitude: -3.9369,
}

func testEnvelope() api.RawTelemetryRecord {
	return api.RawTelemetryRecord{
		TimeStamp: "2023-06-01T12:30:00Z",
		DevEUI:    "70B3D54990566062",
		Payload:   "05bc00000ed805480000",
	}
}

func TestAssemble(t *testing.T) {
	reading := decoder.EchoReading{WaterLevel: 305, BatteryVolt: 3.8}
	ts := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)

	rec, err := Assemble(testEnvelope(), reading, testDevice, ts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if !rec.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, ts)
	}
	if rec.DeviceName != "Outfall Screen" || rec.SiteName != "Harbour Way" {
		t.Errorf("device fields = %q/%q", rec.DeviceName, rec.SiteName)
	}
	if rec.DeviceKind != device.KindEcho {
		t.Errorf("DeviceKind = %v, want Echo", rec.DeviceKind)
	}
	if rec.Payload != "05bc00000ed805480000" {
		t.Errorf("Payload = %q", rec.Payload)
	}
	if got, ok := rec.Reading.(decoder.EchoReading); !ok || got.WaterLevel != 305 {
		t.Errorf("Reading = %+v", rec.Reading)
	}
}

func TestAssembleMissingFields(t *testing.T) {
	ts := time.Now()
	reading := decoder.EchoReading{}

	cases := []struct {
		name   string
		mutate func(*api.RawTelemetryRecord)
	}{
		{"no EUI", func(r *api.RawTelemetryRecord) { r.DevEUI = "" }},
		{"no payload", func(r *api.RawTelemetryRecord) { r.Payload = "" }},
		{"no timestamp", func(r *api.RawTelemetryRecord) { r.TimeStamp = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := testEnvelope()
			tc.mutate(&raw)
			_, err := Assemble(raw, reading, testDevice, ts)
			var ae *AssemblyError
			if !errors.As(err, &ae) {
				t.Errorf("err = %v, want AssemblyError", err)
			}
		})
	}
}

func TestAssembleMetadata(t *testing.T) {
	t.Run("python literal", func(t *testing.T) {
		raw := testEnvelope()
		raw.Metadata = "{'rssi': -97, 'gateway': 'gw-04', 'ack': True}"
		rec, err := Assemble(raw, decoder.EchoReading{}, testDevice, time.Now())
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if rec.Metadata == nil {
			t.Fatalf("Metadata not parsed, raw kept: %q", rec.MetadataRaw)
		}
		if got := rec.Metadata["rssi"]; got != float64(-97) {
			t.Errorf("rssi = %v (%T)", got, got)
		}
		if got := rec.Metadata["gateway"]; got != "gw-04" {
			t.Errorf("gateway = %v", got)
		}
		if got := rec.Metadata["ack"]; got != true {
			t.Errorf("ack = %v", got)
		}
	})

	t.Run("unparseable kept verbatim", func(t *testing.T) {
		raw := testEnvelope()
		raw.Metadata = "{{{{not a literal"
		rec, err := Assemble(raw, decoder.EchoReading{}, testDevice, time.Now())
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if rec.Metadata != nil {
			t.Errorf("Metadata = %v, want nil", rec.Metadata)
		}
		if rec.MetadataRaw != "{{{{not a literal" {
			t.Errorf("MetadataRaw = %q", rec.MetadataRaw)
		}
	})
}

func TestParseMetadata(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"json", `{"snr": 9.5}`, true},
		{"python dict", `{'snr': 9.5, 'crc': None}`, true},
		{"python nested", `{'gw': {'id': 'g1', 'coords': (55.8, -4.2)}}`, true},
		{"exponent number", `{'snr': 1e-05}`, true},
		{"escaped quote", `{'note': 'it\'s fine'}`, true},
		{"garbage", "]][[", false},
		{"unterminated", "{'a': 'b", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := ParseMetadata(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v (m=%v)", ok, tc.ok, m)
			}
		})
	}
}

func TestSortByTime(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []Canonical{
		{DeviceEUI: "c", Timestamp: base.Add(2 * time.Hour)},
		{DeviceEUI: "a", Timestamp: base},
		{DeviceEUI: "b1", Timestamp: base.Add(time.Hour)},
		{DeviceEUI: "b2", Timestamp: base.Add(time.Hour)}, // duplicate instant survives
	}

	SortByTime(records)

	want := []string{"a", "b1", "b2", "c"}
	for i, w := range want {
		if records[i].DeviceEUI != w {
			t.Errorf("records[%d] = %q, want %q", i, records[i].DeviceEUI, w)
		}
	}
}
