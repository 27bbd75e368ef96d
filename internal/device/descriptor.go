package device

// Descriptor describes one physical device from the catalog.
type Descriptor struct {
	EUI  string // Extended Unique Identifier, primary key
	Kind Kind   // Device family
	Name string // Display name
	Site string // Site / location name

	Latitude  float64
	Longitude float64

	// EmptyDistance is the sensor-to-empty-vessel distance in mm, used to
	// convert raw range readings into fill levels. Nil for devices that
	// report levels (or non-level quantities) directly.
	EmptyDistance *int
}
