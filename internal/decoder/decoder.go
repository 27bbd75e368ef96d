package decoder

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/parth2411/sepa-iot-platform/internal/device"
)

// Firmware scaling constants. Reproduced exactly from the device
// documentation; do not round or refactor.
const (
	rainTipMM      = 0.42     // mm of rain per bucket tip
	vwcSlope       = 3.879e-4 // VWC linear calibration slope
	vwcOffset      = 0.6956   // VWC linear calibration offset
	noSensorMarker = -777     // HydroRanger "no climate sensor fitted"
)

// Expected payload sizes in bytes.
const (
	dropletPayloadLen     = 16
	echoPayloadLen        = 10
	hygroPayloadLen       = 14
	hydroRangerPayloadLen = 13
)

// DecodeError reports a payload that could not be decoded. It is distinct
// from "no data": an empty upstream batch is not a DecodeError.
type DecodeError struct {
	Kind   device.Kind
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s payload: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s payload: %s", e.Kind, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(kind device.Kind, reason string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Reason: reason, Err: err}
}

// Decode converts a hex-encoded payload into a typed reading for the given
// device family. emptyDistance converts raw range readings to fill levels
// for the families that support it; pass nil to keep raw distances.
func Decode(kind device.Kind, payload string, emptyDistance *int) (Reading, error) {
	raw, err := hex.DecodeString(payload)
	if err != nil {
		return nil, decodeErr(kind, "bad hex", err)
	}

	switch kind {
	case device.KindDroplet:
		return decodeDroplet(raw)
	case device.KindEcho:
		return decodeEcho(raw, emptyDistance)
	case device.KindHygro:
		return decodeHygro(raw)
	case device.KindHydroRanger:
		return decodeHydroRanger(raw, emptyDistance)
	case device.KindTheta:
		return decodeTheta(raw)
	default:
		return nil, decodeErr(kind, "unsupported device kind", nil)
	}
}

// decodeDroplet unpacks i16, i32, then five i16 fields, big-endian.
func decodeDroplet(raw []byte) (Reading, error) {
	if len(raw) != dropletPayloadLen {
		return nil, decodeErr(device.KindDroplet,
			fmt.Sprintf("length %d, want %d", len(raw), dropletPayloadLen), nil)
	}

	temp := int16(binary.BigEndian.Uint16(raw[0:2]))
	press := int32(binary.BigEndian.Uint32(raw[2:6]))
	humid := int16(binary.BigEndian.Uint16(raw[6:8]))
	batt := int16(binary.BigEndian.Uint16(raw[8:10]))
	rtcTemp := int16(binary.BigEndian.Uint16(raw[10:12]))
	rain := int16(binary.BigEndian.Uint16(raw[12:14]))
	status := int16(binary.BigEndian.Uint16(raw[14:16]))

	return DropletReading{
		AirTemp:     float64(temp) / 100,
		AirPressure: float64(press) / 100,
		AirHumidity: float64(humid) / 100,
		BatteryVolt: round2(float64(batt) / 10),
		RTCTemp:     float64(rtcTemp) / 100,
		Rainfall:    round2(float64(rain) * rainTipMM),
		Status:      int(status),
	}, nil
}

// decodeEcho unpacks five i16 fields, big-endian.
func decodeEcho(raw []byte, emptyDistance *int) (Reading, error) {
	if len(raw) != echoPayloadLen {
		return nil, decodeErr(device.KindEcho,
			fmt.Sprintf("length %d, want %d", len(raw), echoPayloadLen), nil)
	}

	dist := int16(binary.BigEndian.Uint16(raw[0:2]))
	temp := int16(binary.BigEndian.Uint16(raw[2:4]))
	batt := int16(binary.BigEndian.Uint16(raw[4:6]))
	waterTemp := int16(binary.BigEndian.Uint16(raw[6:8]))
	status := int16(binary.BigEndian.Uint16(raw[8:10]))

	level := float64(dist)
	if emptyDistance != nil {
		level = float64(*emptyDistance) - float64(dist)
	}

	return EchoReading{
		WaterLevel:  level,
		AirTemp:     float64(temp) / 100,
		BatteryVolt: round2(float64(batt) / 1000),
		WaterTemp:   float64(waterTemp) / 100,
		Status:      int(status),
	}, nil
}

// decodeHygro unpacks u16, u16, i16, then four u16 fields, big-endian.
func decodeHygro(raw []byte) (Reading, error) {
	if len(raw) != hygroPayloadLen {
		return nil, decodeErr(device.KindHygro,
			fmt.Sprintf("length %d, want %d", len(raw), hygroPayloadLen), nil)
	}

	vwcRaw := binary.BigEndian.Uint16(raw[0:2])
	soilTemp := binary.BigEndian.Uint16(raw[2:4])
	ec := int16(binary.BigEndian.Uint16(raw[4:6]))
	airTemp := binary.BigEndian.Uint16(raw[6:8])
	humid := binary.BigEndian.Uint16(raw[8:10])
	batt := binary.BigEndian.Uint16(raw[10:12])
	status := binary.BigEndian.Uint16(raw[12:14])

	return HygroReading{
		SoilMoisture:     vwcFromRaw(float64(vwcRaw) / 10),
		SoilTemp:         round2(float64(soilTemp) / 100),
		SoilConductivity: float64(ec),
		AirTemp:          float64(airTemp) / 100,
		AirHumidity:      float64(humid) / 100,
		BatteryVolt:      round2(float64(batt) / 1000),
		Status:           int(status),
	}, nil
}

// decodeHydroRanger unpacks i8 then six i16 fields, big-endian. The final
// i16 is a water-temperature slot reserved by the firmware and not yet
// populated, so it is parsed but not surfaced.
func decodeHydroRanger(raw []byte, emptyDistance *int) (Reading, error) {
	if len(raw) != hydroRangerPayloadLen {
		return nil, decodeErr(device.KindHydroRanger,
			fmt.Sprintf("length %d, want exactly %d", len(raw), hydroRangerPayloadLen), nil)
	}

	sensors := int8(raw[0])
	avg := int16(binary.BigEndian.Uint16(raw[1:3]))
	min := int16(binary.BigEndian.Uint16(raw[3:5]))
	max := int16(binary.BigEndian.Uint16(raw[5:7]))
	temp := int16(binary.BigEndian.Uint16(raw[7:9]))
	humid := int16(binary.BigEndian.Uint16(raw[9:11]))
	_ = int16(binary.BigEndian.Uint16(raw[11:13])) // water temp, reserved

	r := HydroRangerReading{Sensors: int(sensors)}

	if emptyDistance != nil {
		// Distance-to-level conversion inverts min and max: the shortest
		// echo (raw min) is the fullest vessel, so it becomes level max.
		r.LevelAvg = *emptyDistance - int(avg)
		r.LevelMax = *emptyDistance - int(min)
		r.LevelMin = *emptyDistance - int(max)
	} else {
		r.LevelAvg = int(avg)
		r.LevelMin = int(min)
		r.LevelMax = int(max)
	}

	if temp != noSensorMarker {
		t := round2(float64(temp) / 100)
		h := round2(float64(humid) / 100)
		r.AirTemp = &t
		r.AirHumidity = &h
	}

	return r, nil
}

// thetaToken matches one signed decimal token in a Theta ASCII payload.
var thetaToken = regexp.MustCompile(`[+-][\d.]+`)

// decodeTheta parses the ASCII text variant: three signed decimal tokens in
// order (raw VWC, soil temperature, soil conductivity).
func decodeTheta(raw []byte) (Reading, error) {
	tokens := thetaToken.FindAllString(string(raw), -1)
	if len(tokens) != 3 {
		return nil, decodeErr(device.KindTheta,
			fmt.Sprintf("found %d numeric tokens, want 3", len(tokens)), nil)
	}

	vals := make([]float64, 3)
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, decodeErr(device.KindTheta, "bad numeric token "+tok, err)
		}
		vals[i] = v
	}

	return ThetaReading{
		SoilMoisture:     vwcFromRaw(vals[0]),
		SoilTemp:         vals[1],
		SoilConductivity: vals[2],
	}, nil
}

// vwcFromRaw applies the linear VWC calibration to a raw capacitance-like
// reading and returns percent volumetric water content.
func vwcFromRaw(raw float64) float64 {
	return round2((vwcSlope*raw - vwcOffset) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
