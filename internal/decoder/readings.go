package decoder

import "github.com/parth2411/sepa-iot-platform/internal/device"

// Reading is a decoded measurement from exactly one device family.
type Reading interface {
	Kind() device.Kind
}

// DropletReading holds weather-station measurements.
type DropletReading struct {
	AirTemp     float64 // degC
	AirPressure float64 // mb
	AirHumidity float64 // %
	BatteryVolt float64 // V
	RTCTemp     float64 // degC, RTC chip internal
	Rainfall    float64 // mm, bucket tips scaled by tip volume
	Status      int
}

func (DropletReading) Kind() device.Kind { return device.KindDroplet }

// EchoReading holds ultrasonic level-sensor measurements.
type EchoReading struct {
	WaterLevel  float64 // mm; raw distance when no reference distance is set
	AirTemp     float64 // degC
	BatteryVolt float64 // V
	WaterTemp   float64 // degC
	Status      int
}

func (EchoReading) Kind() device.Kind { return device.KindEcho }

// HygroReading holds soil-probe measurements.
type HygroReading struct {
	SoilMoisture     float64 // % VWC
	SoilTemp         float64 // degC
	SoilConductivity float64 // dS/m
	AirTemp          float64 // degC
	AirHumidity      float64 // %
	BatteryVolt      float64 // V
	Status           int
}

func (HygroReading) Kind() device.Kind { return device.KindHygro }

// HydroRangerReading holds multi-sensor ranger measurements. AirTemp and
// AirHumidity are nil when the unit reports the -777 no-sensor sentinel.
type HydroRangerReading struct {
	Sensors  int // active sensor bitmap
	LevelAvg int // mm
	LevelMin int // mm
	LevelMax int // mm

	AirTemp     *float64 // degC
	AirHumidity *float64 // %
}

func (HydroRangerReading) Kind() device.Kind { return device.KindHydroRanger }

// ThetaReading holds soil measurements transmitted as ASCII text.
type ThetaReading struct {
	SoilMoisture     float64 // % VWC
	SoilTemp         float64 // degC
	SoilConductivity float64 // dS/m
}

func (ThetaReading) Kind() device.Kind { return device.KindTheta }
