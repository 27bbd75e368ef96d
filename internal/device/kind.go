package device

import "fmt"

// Kind identifies a device family. The set is closed: every decoder,
// table and export column set is keyed on it.
type Kind int

const (
	KindUnknown Kind = iota
	KindHydroRanger
	KindEcho
	KindDroplet
	KindHygro
	KindTheta
)

// Kinds lists all supported device families.
var Kinds = []Kind{KindHydroRanger, KindEcho, KindDroplet, KindHygro, KindTheta}

// String returns the kind name as it appears in the catalog file and in
// upstream API parameters.
func (k Kind) String() string {
	switch k {
	case KindHydroRanger:
		return "HydroRanger"
	case KindEcho:
		return "Echo"
	case KindDroplet:
		return "Droplet"
	case KindHygro:
		return "Hygro"
	case KindTheta:
		return "Theta"
	default:
		return "Unknown"
	}
}

// ParseKind maps a catalog type string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "HydroRanger":
		return KindHydroRanger, nil
	case "Echo":
		return KindEcho, nil
	case "Droplet":
		return KindDroplet, nil
	case "Hygro":
		return KindHygro, nil
	case "Theta":
		return KindTheta, nil
	default:
		return KindUnknown, fmt.Errorf("unknown device type %q", s)
	}
}

// NeedsTypeParam reports whether upstream queries for this kind must carry
// the "type" discriminator. The backend stores HydroRanger and Theta
// records in shared tables and cannot resolve the device without it.
func (k Kind) NeedsTypeParam() bool {
	return k == KindHydroRanger || k == KindTheta
}
